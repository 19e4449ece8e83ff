package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
)

type memoryPoint struct {
	chunk  domainRAG.Chunk
	vector []float32
	norm   float64
}

// MemoryStore 进程内向量库，暴力计算余弦相似度
// 未部署 Qdrant 时使用；重启后由 Reindex 从 chunks 表恢复
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]*memoryPoint
}

// NewMemoryStore 创建进程内向量库
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]*memoryPoint)}
}

// EnsureCollection 记录维度
func (s *MemoryStore) EnsureCollection(_ context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("dimension mismatch: collection has %d, got %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert 写入片段向量
func (s *MemoryStore) Upsert(_ context.Context, chunks []*domainRAG.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		if s.dimension != 0 && len(vectors[i]) != s.dimension {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vectors[i]), s.dimension)
		}
		s.points[c.ID] = &memoryPoint{chunk: *c, vector: vectors[i], norm: norm(vectors[i])}
	}
	return nil
}

// Search 检索最相似的片段
func (s *MemoryStore) Search(_ context.Context, vector []float32, filter domainRAG.SearchFilter, limit int) ([]domainRAG.SearchHit, error) {
	qn := norm(vector)
	if qn == 0 || limit <= 0 {
		return []domainRAG.SearchHit{}, nil
	}

	s.mu.RLock()
	hits := make([]domainRAG.SearchHit, 0)
	for _, p := range s.points {
		if filter.ChatID != "" && p.chunk.ChatID != filter.ChatID {
			continue
		}
		if filter.UserID != "" && p.chunk.UserID != filter.UserID {
			continue
		}
		if p.norm == 0 || len(p.vector) != len(vector) {
			continue
		}
		var dot float64
		for i := range vector {
			dot += float64(vector[i]) * float64(p.vector[i])
		}
		hits = append(hits, domainRAG.SearchHit{
			ChunkID:  p.chunk.ID,
			ChatID:   p.chunk.ChatID,
			Position: p.chunk.Position,
			Content:  p.chunk.Content,
			Score:    float32(dot / (qn * p.norm)),
		})
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteByChat 删除会话的全部向量
func (s *MemoryStore) DeleteByChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.chunk.ChatID == chatID {
			delete(s.points, id)
		}
	}
	return nil
}

// Len 返回向量数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
