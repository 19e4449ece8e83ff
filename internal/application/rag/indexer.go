// Package rag 编排片段的向量化、写入与检索
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// Indexer 将来源文本片段写入向量库与片段表
type Indexer struct {
	embedder  domainRAG.Embedder
	store     domainRAG.VectorStore
	chunkRepo domainRAG.ChunkRepository
	logger    *slog.Logger
}

// NewIndexer 创建索引器
func NewIndexer(
	embedder domainRAG.Embedder,
	store domainRAG.VectorStore,
	chunkRepo domainRAG.ChunkRepository,
) *Indexer {
	return &Indexer{
		embedder:  embedder,
		store:     store,
		chunkRepo: chunkRepo,
		logger:    log.NewModuleLogger("rag", "indexer"),
	}
}

// Index 为会话写入片段，返回写入数量
func (i *Indexer) Index(ctx context.Context, session *domainChat.Session, texts []string) (int, error) {
	chunks := make([]*domainRAG.Chunk, 0, len(texts))
	now := time.Now()
	for _, t := range texts {
		t = strings.ToValidUTF8(t, "")
		if strings.TrimSpace(t) == "" {
			continue
		}
		chunks = append(chunks, &domainRAG.Chunk{
			ID:         uuid.New().String(),
			ChatID:     session.ID,
			UserID:     session.UserID,
			SourceType: session.SourceType.String(),
			Position:   len(chunks),
			Content:    t,
			CreatedAt:  now,
		})
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	start := time.Now()
	if err := i.upsert(ctx, chunks); err != nil {
		return 0, err
	}
	if err := i.chunkRepo.SaveChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to save chunks: %w", err)
	}

	i.logger.Info("Source indexed",
		"chat_id", session.ID,
		"user_id", session.UserID,
		"chunks", len(chunks),
		"duration", time.Since(start),
	)
	return len(chunks), nil
}

// upsert 向量化并写入向量库
func (i *Indexer) upsert(ctx context.Context, chunks []*domainRAG.Chunk) error {
	texts := make([]string, len(chunks))
	for k, c := range chunks {
		texts[k] = c.Content
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) || len(vectors[0]) == 0 {
		return fmt.Errorf("invalid embedding result: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := i.store.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	if err := i.store.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

// Delete 删除会话的向量与片段
func (i *Indexer) Delete(ctx context.Context, chatID string) error {
	if err := i.store.DeleteByChat(ctx, chatID); err != nil {
		return err
	}
	return i.chunkRepo.DeleteByChat(ctx, chatID)
}

// Reindex 从片段表重建向量索引
// 进程内向量库重启后为空，启动时调用
func (i *Indexer) Reindex(ctx context.Context) (int, error) {
	chatIDs, err := i.chunkRepo.ChatIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(chatIDs) == 0 {
		return 0, nil
	}

	p := pool.NewWithResults[int]().WithContext(ctx).WithMaxGoroutines(2)
	for _, id := range chatIDs {
		p.Go(func(ctx context.Context) (int, error) {
			chunks, err := i.chunkRepo.FindByChat(ctx, id)
			if err != nil {
				return 0, err
			}
			if len(chunks) == 0 {
				return 0, nil
			}
			if err := i.upsert(ctx, chunks); err != nil {
				return 0, fmt.Errorf("chat %s: %w", id, err)
			}
			return len(chunks), nil
		})
	}

	counts, err := p.Wait()
	total := 0
	for _, n := range counts {
		total += n
	}
	i.logger.Info("Vector index rebuilt", "chats", len(chatIDs), "chunks", total)
	return total, err
}
