package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		id   string
		ok   bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://youtube.com/shorts/abcdefghijk", "abcdefghijk", true},
		{"too short", "https://www.youtube.com/watch?v=abc", "", false},
		{"plain text", "not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractYouTubeID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestClassifyLink(t *testing.T) {
	assert.Equal(t, TypeYouTube, ClassifyLink("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, TypeWeb, ClassifyLink("https://www.youtube.com/watch?v=short"))
	assert.Equal(t, TypeWeb, ClassifyLink("https://go.dev/doc/effective_go"))
	assert.Equal(t, TypeWeb, ClassifyLink("::::"))
}

func TestTypeFromFilename(t *testing.T) {
	tests := map[string]Type{
		"report.pdf":   TypePDF,
		"REPORT.PDF":   TypePDF,
		"notes.docx":   TypeWord,
		"budget.xlsx":  TypeExcel,
		"old.xls":      TypeExcel,
		"data.csv":     TypeCSV,
		"main.py":      TypeCode,
		"app.js":       TypeCode,
		"package.json": TypeCode,
		"readme.md":    TypeText,
		"todo.txt":     TypeText,
	}
	for name, want := range tests {
		got, err := TypeFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := TypeFromFilename("malware.exe")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.False(t, IsAllowedUpload("archive.zip"))
	assert.True(t, IsAllowedUpload("Slides.PDF"))
}

func TestAllowedExtensionsMatchMapping(t *testing.T) {
	for _, ext := range AllowedExtensions() {
		assert.True(t, IsAllowedUpload("file"+ext), ext)
	}
}

func TestBucketOf(t *testing.T) {
	for _, st := range []string{"pdf", "word", "excel", "csv", "code", "file", "text"} {
		assert.Equal(t, BucketDocument, BucketOf(st), st)
	}
	assert.Equal(t, BucketVideo, BucketOf("youtube"))

	// 未知类型与大小写不匹配的类型都归入 web
	for _, st := range []string{"web", "website", "general", "", "PDF", "YouTube"} {
		assert.Equal(t, BucketWeb, BucketOf(st), st)
	}
}
