package rag

import "context"

// ChunkRepository 知识片段仓储接口
type ChunkRepository interface {
	// SaveChunks 批量保存片段
	SaveChunks(ctx context.Context, chunks []*Chunk) error
	// FindByChat 按位置顺序返回会话的全部片段
	FindByChat(ctx context.Context, chatID string) ([]*Chunk, error)
	// DeleteByChat 删除会话的全部片段
	DeleteByChat(ctx context.Context, chatID string) error
	// ChatIDs 返回所有存在片段的会话 ID，用于重建向量索引
	ChatIDs(ctx context.Context) ([]string, error)
}
