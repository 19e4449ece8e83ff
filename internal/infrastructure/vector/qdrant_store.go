package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// QdrantStore 基于 Qdrant 的向量库
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger

	mu      sync.Mutex
	ensured bool
}

// NewQdrantStore 连接 Qdrant（gRPC 端口）
func NewQdrantStore(host string, port int, collection string) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}, nil
}

// EnsureCollection 确保集合存在
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range existing {
		if name == s.collection {
			s.ensured = true
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	s.logger.Info("Created qdrant collection", "collection", s.collection, "dimension", dimension)
	s.ensured = true
	return nil
}

// Upsert 写入片段向量
func (s *QdrantStore) Upsert(ctx context.Context, chunks []*domainRAG.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(c.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    c.ID,
				"chat_id":     c.ChatID,
				"user_id":     c.UserID,
				"source_type": c.SourceType,
				"position":    c.Position,
				"content":     strings.ToValidUTF8(c.Content, ""),
			}),
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Search 检索最相似的片段
func (s *QdrantStore) Search(ctx context.Context, vector []float32, filter domainRAG.SearchFilter, limit int) ([]domainRAG.SearchHit, error) {
	lim := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &lim,
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	results := make([]domainRAG.SearchHit, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}
		results = append(results, domainRAG.SearchHit{
			ChunkID:  extractStringValue(payload["chunk_id"]),
			ChatID:   extractStringValue(payload["chat_id"]),
			Position: int(extractIntValue(payload["position"])),
			Content:  extractStringValue(payload["content"]),
			Score:    hit.GetScore(),
		})
	}
	return results, nil
}

// DeleteByChat 按 chat_id 删除向量
func (s *QdrantStore) DeleteByChat(ctx context.Context, chatID string) error {
	wait := true
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: buildFilter(domainRAG.SearchFilter{ChatID: chatID}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points for chat %s: %w", chatID, err)
	}
	return nil
}

// Close 关闭连接
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// buildFilter 构建过滤条件，没有条件时返回 nil
func buildFilter(f domainRAG.SearchFilter) *qdrant.Filter {
	var must []*qdrant.Condition
	if f.ChatID != "" {
		must = append(must, qdrant.NewMatch("chat_id", f.ChatID))
	}
	if f.UserID != "" {
		must = append(must, qdrant.NewMatch("user_id", f.UserID))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// extractStringValue 从 qdrant.Value 提取字符串值
func extractStringValue(val *qdrant.Value) string {
	if val == nil {
		return ""
	}
	return val.GetStringValue()
}

// extractIntValue 从 qdrant.Value 提取整数值
func extractIntValue(val *qdrant.Value) int64 {
	if val == nil {
		return 0
	}
	if intVal := val.GetIntegerValue(); intVal != 0 {
		return intVal
	}
	return int64(val.GetDoubleValue())
}
