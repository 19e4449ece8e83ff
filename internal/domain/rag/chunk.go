// Package rag 定义检索增强所需的知识片段模型
package rag

import "time"

// Chunk 知识片段
// 来源文本切分后的最小检索单位，ID 同时作为向量库的 point id
type Chunk struct {
	ID         string
	ChatID     string
	UserID     string
	SourceType string
	Position   int
	Content    string
	CreatedAt  time.Time
}

// SearchHit 向量检索命中
type SearchHit struct {
	ChunkID  string
	ChatID   string
	Position int
	Content  string
	Score    float32
}

// SearchFilter 检索过滤条件，空字段不参与过滤
type SearchFilter struct {
	ChatID string
	UserID string
}
