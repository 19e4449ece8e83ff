package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// maxSearchLimit 单次检索的结果上限
const maxSearchLimit = 50

// Retriever 按语义检索片段
type Retriever struct {
	embedder domainRAG.Embedder
	store    domainRAG.VectorStore
	topK     int
	logger   *slog.Logger
}

// NewRetriever 创建检索器
func NewRetriever(embedder domainRAG.Embedder, store domainRAG.VectorStore, cfg *config.VectorConfig) *Retriever {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		logger:   log.NewModuleLogger("rag", "retriever"),
	}
}

// Retrieve 检索会话来源中与问题最相关的 top-k 片段
func (r *Retriever) Retrieve(ctx context.Context, chatID, query string) ([]domainRAG.SearchHit, error) {
	return r.search(ctx, query, domainRAG.SearchFilter{ChatID: chatID}, r.topK)
}

// Search 在用户的全部来源中检索
func (r *Retriever) Search(ctx context.Context, userID, query string, limit int) ([]domainRAG.SearchHit, error) {
	if limit <= 0 {
		limit = r.topK
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return r.search(ctx, query, domainRAG.SearchFilter{UserID: userID}, limit)
}

func (r *Retriever) search(ctx context.Context, query string, filter domainRAG.SearchFilter, limit int) ([]domainRAG.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return []domainRAG.SearchHit{}, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("invalid embedding result")
	}

	hits, err := r.store.Search(ctx, vectors[0], filter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	r.logger.Debug("Search completed",
		"chat_id", filter.ChatID,
		"user_id", filter.UserID,
		"limit", limit,
		"hits", len(hits),
	)
	return hits, nil
}
