package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
)

// 确保 ChunkRepository 实现了 domainRAG.ChunkRepository 接口
var _ domainRAG.ChunkRepository = (*ChunkRepository)(nil)

// ChunkRepository 知识片段仓储 SQLite 实现
type ChunkRepository struct {
	db *sql.DB
}

// NewChunkRepository 创建知识片段仓储
func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// SaveChunks 批量保存知识片段
func (r *ChunkRepository) SaveChunks(ctx context.Context, chunks []*domainRAG.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (
			id, chat_id, user_id, source_type, position, content, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range chunks {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.ChatID, c.UserID, c.SourceType, c.Position, c.Content, c.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.Position, err)
		}
	}

	return tx.Commit()
}

// FindByChat 按位置顺序返回会话的全部片段
func (r *ChunkRepository) FindByChat(ctx context.Context, chatID string) ([]*domainRAG.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, user_id, source_type, position, content, created_at
		FROM chunks WHERE chat_id = ? ORDER BY position ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domainRAG.Chunk
	for rows.Next() {
		var c domainRAG.Chunk
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.ChatID, &c.UserID, &c.SourceType, &c.Position, &c.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.CreatedAt = time.UnixMilli(createdAt)
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// DeleteByChat 删除会话的全部片段
func (r *ChunkRepository) DeleteByChat(ctx context.Context, chatID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ChatIDs 返回所有存在片段的会话 ID
func (r *ChunkRepository) ChatIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT chat_id FROM chunks ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk chats: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
