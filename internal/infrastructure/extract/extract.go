// Package extract 从上传文件与远程页面中提取纯文本
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/secondbrain/backend/internal/domain/source"
)

var (
	// ErrNoText 没有提取到任何文本
	ErrNoText = errors.New("no text could be extracted")
	// ErrLegacyXLS 旧版二进制 .xls 工作簿
	ErrLegacyXLS = errors.New("legacy .xls workbooks are not supported, save as .xlsx")
)

// ExtractionError 文件内容无法解析
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NoTextError 文件或页面解析成功但没有文本，errors.Is 匹配 ErrNoText
type NoTextError struct {
	Name string
}

func (e *NoTextError) Error() string {
	return fmt.Sprintf("no text could be extracted from %s", e.Name)
}

func (e *NoTextError) Is(target error) bool {
	return target == ErrNoText
}

// Extractor 文本提取器
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// ExtractorFunc 函数式提取器
type ExtractorFunc func(ctx context.Context, name string, data []byte) (string, error)

// Extract 实现 Extractor 接口
func (f ExtractorFunc) Extract(ctx context.Context, name string, data []byte) (string, error) {
	return f(ctx, name, data)
}

// Registry 按来源类型注册的提取器
type Registry struct {
	extractors map[source.Type]Extractor
}

// NewRegistry 创建注册表并注册内置提取器
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[source.Type]Extractor)}
	r.Register(source.TypePDF, NewPDFExtractor())
	r.Register(source.TypeWord, NewDocxExtractor())
	r.Register(source.TypeExcel, NewSheetExtractor())
	r.Register(source.TypeCSV, NewCSVExtractor())
	text := NewTextExtractor()
	r.Register(source.TypeText, text)
	r.Register(source.TypeCode, text)
	return r
}

// Register 注册提取器，已存在时覆盖
func (r *Registry) Register(t source.Type, e Extractor) {
	r.extractors[t] = e
}

// Extract 根据文件名选择提取器并提取文本
// 返回的文本已去除首尾空白，为空时返回 ErrNoText
func (r *Registry) Extract(ctx context.Context, name string, data []byte) (source.Type, string, error) {
	t, err := source.TypeFromFilename(name)
	if err != nil {
		return "", "", err
	}
	e, ok := r.extractors[t]
	if !ok {
		return t, "", fmt.Errorf("no extractor for %s: %w", t, source.ErrUnsupportedFile)
	}

	text, err := e.Extract(ctx, name, data)
	if err != nil {
		return t, "", &ExtractionError{Name: name, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return t, "", &NoTextError{Name: name}
	}
	return t, text, nil
}

// collapseBlankLines 合并多余空行
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
