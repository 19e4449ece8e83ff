package rag

import "context"

// Embedder 文本向量化接口
type Embedder interface {
	// Embed 批量向量化，返回顺序与输入一致
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore 向量库接口
type VectorStore interface {
	// EnsureCollection 确保集合存在且维度匹配
	EnsureCollection(ctx context.Context, dimension int) error
	// Upsert 写入片段向量，chunks 与 vectors 一一对应
	Upsert(ctx context.Context, chunks []*Chunk, vectors [][]float32) error
	// Search 按余弦相似度检索，结果按分数降序
	Search(ctx context.Context, vector []float32, filter SearchFilter, limit int) ([]SearchHit, error)
	// DeleteByChat 删除会话的全部向量
	DeleteByChat(ctx context.Context, chatID string) error
}
