package extract

import (
	"bytes"
	"context"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// TextExtractor 纯文本、Markdown、源代码与 JSON
type TextExtractor struct{}

// NewTextExtractor 创建文本提取器
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract 原样返回内容，非 UTF-8 时按 GBK 解码
func (e *TextExtractor) Extract(_ context.Context, _ string, data []byte) (string, error) {
	data = bytes.TrimPrefix(toUTF8(data), []byte("\xEF\xBB\xBF"))
	return string(data), nil
}

// toUTF8 将非 UTF-8 字节按 GBK 转换，转换失败时保留原始数据
func toUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	reader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder())
	converted, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(converted) {
		return bytes.ToValidUTF8(data, []byte("�"))
	}
	return converted
}
