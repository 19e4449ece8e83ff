// Package graph 构建用户来源之间的知识图谱
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	domainGraph "github.com/secondbrain/backend/internal/domain/graph"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/cache"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	// termsPerSource 每个来源参与连线的关键词数量
	termsPerSource = 8
	// minSharedSources 关键词至少被多少个来源共享才成为节点
	minSharedSources = 2
	defaultTTL       = 10 * time.Minute
)

// Builder 知识图谱构建器，结果按用户缓存
type Builder struct {
	chats  domainChat.Repository
	chunks domainRAG.ChunkRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger

	// generations 每次失效递增，构建期间发生变化的结果不写缓存
	mu          sync.Mutex
	generations map[string]uint64
}

// NewBuilder 创建知识图谱构建器
func NewBuilder(
	chats domainChat.Repository,
	chunks domainRAG.ChunkRepository,
	c cache.Cache,
	cfg *config.RedisConfig,
) *Builder {
	ttl := time.Duration(cfg.GraphTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Builder{
		chats:  chats,
		chunks: chunks,
		cache:  c,
		ttl:    ttl,
		logger: log.NewModuleLogger("graph", "builder"),

		generations: make(map[string]uint64),
	}
}

func cacheKey(userID string) string {
	return "graph:" + userID
}

// Graph 返回用户的知识图谱，优先读取缓存
func (b *Builder) Graph(ctx context.Context, userID string) (*domainGraph.Graph, error) {
	key := cacheKey(userID)

	if data, ok, err := b.cache.Get(ctx, key); err != nil {
		b.logger.Warn("Failed to read graph cache", "user_id", userID, "error", err)
	} else if ok {
		var g domainGraph.Graph
		if err := json.Unmarshal(data, &g); err == nil {
			return &g, nil
		}
	}

	gen := b.generation(userID)
	g, err := b.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	b.store(ctx, userID, gen, g)
	return g, nil
}

func (b *Builder) generation(userID string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generations[userID]
}

// store 写入缓存；构建开始后若已失效则丢弃结果
func (b *Builder) store(ctx context.Context, userID string, gen uint64, g *domainGraph.Graph) {
	data, err := json.Marshal(g)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generations[userID] != gen {
		b.logger.Debug("Graph changed during build, not caching", "user_id", userID)
		return
	}
	if err := b.cache.Set(ctx, cacheKey(userID), data, b.ttl); err != nil {
		b.logger.Warn("Failed to write graph cache", "user_id", userID, "error", err)
	}
}

// Build 不经缓存直接构建图谱
func (b *Builder) Build(ctx context.Context, userID string) (*domainGraph.Graph, error) {
	sessions, err := b.chats.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	g := domainGraph.Empty()
	termSources := make(map[string][]string)

	for _, s := range sessions {
		if !s.HasSource() {
			continue
		}

		chunks, err := b.chunks.FindByChat(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load chunks: %w", err)
		}
		texts := make([]string, 0, len(chunks))
		for _, c := range chunks {
			texts = append(texts, c.Content)
		}
		if len(texts) == 0 && s.SourceContent != "" {
			texts = append(texts, s.SourceContent)
		}

		g.Nodes = append(g.Nodes, domainGraph.Node{
			ID:    s.ID,
			Name:  s.Title,
			Color: domainGraph.ColorForSource(s.SourceType.String()),
			Type:  domainGraph.NodeSource,
			Val:   sourceVal(len(chunks)),
		})

		for _, term := range TopTerms(texts, termsPerSource) {
			termSources[term] = append(termSources[term], s.ID)
		}
	}

	shared := make([]string, 0)
	for term, ids := range termSources {
		if len(ids) >= minSharedSources {
			shared = append(shared, term)
		}
	}
	sort.Strings(shared)

	for _, term := range shared {
		id := domainGraph.KeywordNodePrefix + term
		g.Nodes = append(g.Nodes, domainGraph.Node{
			ID:    id,
			Name:  term,
			Color: domainGraph.ColorKeyword,
			Type:  domainGraph.NodeKeyword,
			Val:   float64(len(termSources[term])),
		})
		for _, chatID := range termSources[term] {
			g.Links = append(g.Links, domainGraph.Link{Source: chatID, Target: id})
		}
	}

	b.logger.Debug("Graph built",
		"user_id", userID,
		"nodes", len(g.Nodes),
		"links", len(g.Links),
	)
	return g, nil
}

// sourceVal 节点大小：1 + log2(片段数)，至少为 1
func sourceVal(chunks int) float64 {
	if chunks <= 1 {
		return 1
	}
	return 1 + math.Log2(float64(chunks))
}

// Invalidate 失效用户的图谱缓存
func (b *Builder) Invalidate(ctx context.Context, userID string) error {
	b.mu.Lock()
	b.generations[userID]++
	b.mu.Unlock()
	return b.cache.Delete(ctx, cacheKey(userID))
}
