package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor CSV 文本提取
type CSVExtractor struct{}

// NewCSVExtractor 创建 CSV 提取器
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// Extract 规范化每一行，字段以 ", " 连接
func (e *CSVExtractor) Extract(_ context.Context, name string, data []byte) (string, error) {
	data = bytes.TrimPrefix(toUTF8(data), []byte("\xEF\xBB\xBF"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var sb strings.Builder
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse csv %s: %w", name, err)
		}
		line := strings.TrimSpace(strings.Join(record, ", "))
		if strings.Trim(line, ", ") == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}
