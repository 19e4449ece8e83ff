// Package source 定义可被导入的知识来源及其分类规则
package source

import "errors"

// Type 来源类型
type Type string

const (
	// TypeYouTube YouTube 视频
	TypeYouTube Type = "youtube"
	// TypePDF PDF 文档
	TypePDF Type = "pdf"
	// TypeWord Word 文档（.docx）
	TypeWord Type = "word"
	// TypeExcel Excel 工作簿
	TypeExcel Type = "excel"
	// TypeCSV CSV 表格
	TypeCSV Type = "csv"
	// TypeCode 源代码或 JSON
	TypeCode Type = "code"
	// TypeText 纯文本或 Markdown
	TypeText Type = "text"
	// TypeWeb 网页
	TypeWeb Type = "web"
	// TypeWebsite 网站（旧版客户端使用）
	TypeWebsite Type = "website"
	// TypeGeneral 无来源的普通对话
	TypeGeneral Type = "general"
	// TypeFile 旧版客户端使用的通用文件类型
	TypeFile Type = "file"
)

// String 返回字符串形式
func (t Type) String() string {
	return string(t)
}

// IsGeneral 是否为无来源对话
func (t Type) IsGeneral() bool {
	return t == "" || t == TypeGeneral
}

var (
	// ErrUnsupportedFile 不支持的上传文件类型
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrEmptyURL 链接为空
	ErrEmptyURL = errors.New("url is required")
)

// Source 已导入的来源
// 导入后挂载到唯一一个对话上，之后不再变化
type Source struct {
	Type    Type
	// URL 原始链接、上传文件名或 YouTube 视频 ID
	URL     string
	Name    string
	Content string
}
