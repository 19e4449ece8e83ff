package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// oleMagic 旧版 Office 复合文档（.xls）文件头
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// SheetExtractor Excel 工作簿文本提取
type SheetExtractor struct{}

// NewSheetExtractor 创建工作簿提取器
func NewSheetExtractor() *SheetExtractor {
	return &SheetExtractor{}
}

// Extract 遍历所有工作表，单元格以制表符连接
func (e *SheetExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	if bytes.HasPrefix(data, oleMagic) || strings.EqualFold(filepath.Ext(name), ".xls") {
		return "", ErrLegacyXLS
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("# " + sheet + "\n")
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
