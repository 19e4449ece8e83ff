package source

import (
	"path/filepath"
	"regexp"
	"strings"
)

// youtubeIDPattern 匹配 v=XXXXXXXXXXX 或 /XXXXXXXXXXX 形式的 11 位视频 ID
var youtubeIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractYouTubeID 从链接中提取 YouTube 视频 ID
func ExtractYouTubeID(rawURL string) (string, bool) {
	m := youtubeIDPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// ClassifyLink 对链接分类
// 只有指向 youtu 域名且能提取出视频 ID 的链接才是 youtube，其余一律视为网页
func ClassifyLink(rawURL string) Type {
	if !strings.Contains(strings.ToLower(rawURL), "youtu") {
		return TypeWeb
	}
	if _, ok := ExtractYouTubeID(rawURL); ok {
		return TypeYouTube
	}
	return TypeWeb
}

// uploadTypes 上传白名单及扩展名到来源类型的映射
var uploadTypes = map[string]Type{
	".pdf":  TypePDF,
	".docx": TypeWord,
	".xlsx": TypeExcel,
	".xls":  TypeExcel,
	".csv":  TypeCSV,
	".py":   TypeCode,
	".js":   TypeCode,
	".json": TypeCode,
	".txt":  TypeText,
	".md":   TypeText,
}

// AllowedExtensions 返回上传白名单（与前端 accept 属性一致）
func AllowedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md", ".csv", ".xlsx", ".xls", ".py", ".js", ".json"}
}

// IsAllowedUpload 文件名是否在上传白名单中
func IsAllowedUpload(name string) bool {
	_, ok := uploadTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// TypeFromFilename 根据扩展名推断来源类型
func TypeFromFilename(name string) (Type, error) {
	t, ok := uploadTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", ErrUnsupportedFile
	}
	return t, nil
}

// Bucket 历史记录分组
type Bucket string

const (
	// BucketVideo 视频
	BucketVideo Bucket = "video"
	// BucketDocument 文档
	BucketDocument Bucket = "document"
	// BucketWeb 网页及其他
	BucketWeb Bucket = "web"
)

var documentTypes = map[string]struct{}{
	"pdf": {}, "word": {}, "excel": {}, "code": {}, "file": {}, "csv": {}, "text": {},
}

// BucketOf 按 source_type 字符串分组（区分大小写，未知类型归入 web）
func BucketOf(sourceType string) Bucket {
	if sourceType == string(TypeYouTube) {
		return BucketVideo
	}
	if _, ok := documentTypes[sourceType]; ok {
		return BucketDocument
	}
	return BucketWeb
}
