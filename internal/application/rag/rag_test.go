package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/embedding"
	"github.com/secondbrain/backend/internal/infrastructure/vector"
)

type memChunkRepo struct {
	chunks map[string][]*domainRAG.Chunk
}

func newMemChunkRepo() *memChunkRepo {
	return &memChunkRepo{chunks: make(map[string][]*domainRAG.Chunk)}
}

func (r *memChunkRepo) SaveChunks(_ context.Context, chunks []*domainRAG.Chunk) error {
	for _, c := range chunks {
		r.chunks[c.ChatID] = append(r.chunks[c.ChatID], c)
	}
	return nil
}

func (r *memChunkRepo) FindByChat(_ context.Context, chatID string) ([]*domainRAG.Chunk, error) {
	return r.chunks[chatID], nil
}

func (r *memChunkRepo) DeleteByChat(_ context.Context, chatID string) error {
	delete(r.chunks, chatID)
	return nil
}

func (r *memChunkRepo) ChatIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.chunks))
	for id := range r.chunks {
		ids = append(ids, id)
	}
	return ids, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding service down")
}

func newTestRAG() (*Indexer, *Retriever, *vector.MemoryStore, *memChunkRepo) {
	emb := embedding.NewHashingEmbedder(1024)
	store := vector.NewMemoryStore()
	repo := newMemChunkRepo()
	return NewIndexer(emb, store, repo), NewRetriever(emb, store, &config.VectorConfig{TopK: 2}), store, repo
}

func TestIndexer_IndexAndRetrieve(t *testing.T) {
	indexer, retriever, store, repo := newTestRAG()
	ctx := context.Background()

	session := &domainChat.Session{ID: "c1", UserID: "u1", SourceType: source.TypePDF}
	n, err := indexer.Index(ctx, session, []string{
		"Goroutines are lightweight threads managed by the Go runtime.",
		"   ",
		"Channels let goroutines communicate safely.",
		"Photosynthesis converts light into chemical energy.",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 2, repo.chunks["c1"][2].Position)
	assert.Equal(t, "pdf", repo.chunks["c1"][0].SourceType)

	other := &domainChat.Session{ID: "c2", UserID: "u2", SourceType: source.TypeWeb}
	_, err = indexer.Index(ctx, other, []string{"Goroutines and channels in another user's notes."})
	require.NoError(t, err)

	hits, err := retriever.Retrieve(ctx, "c1", "how do goroutines communicate with channels")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "c1", h.ChatID)
	}
	assert.NotContains(t, hits[0].Content, "Photosynthesis")

	hits, err = retriever.Search(ctx, "u2", "goroutines", 100)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c2", hits[0].ChatID)

	hits, err = retriever.Retrieve(ctx, "c1", "  ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexer_EmptyInput(t *testing.T) {
	indexer, _, store, _ := newTestRAG()
	n, err := indexer.Index(context.Background(), &domainChat.Session{ID: "c"}, []string{"", " "})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.Len())
}

func TestIndexer_Delete(t *testing.T) {
	indexer, _, store, repo := newTestRAG()
	ctx := context.Background()

	_, err := indexer.Index(ctx, &domainChat.Session{ID: "c1", UserID: "u"}, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.NoError(t, indexer.Delete(ctx, "c1"))

	assert.Zero(t, store.Len())
	assert.Empty(t, repo.chunks)
}

func TestIndexer_Reindex(t *testing.T) {
	indexer, _, _, repo := newTestRAG()
	ctx := context.Background()
	_, err := indexer.Index(ctx, &domainChat.Session{ID: "c1", UserID: "u"}, []string{"alpha", "beta"})
	require.NoError(t, err)

	// 模拟重启：新的空向量库，片段表保留
	fresh := vector.NewMemoryStore()
	restarted := NewIndexer(embedding.NewHashingEmbedder(1024), fresh, repo)
	n, err := restarted.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, fresh.Len())
}

func TestIndexer_EmbedFailure(t *testing.T) {
	repo := newMemChunkRepo()
	indexer := NewIndexer(failingEmbedder{}, vector.NewMemoryStore(), repo)

	_, err := indexer.Index(context.Background(), &domainChat.Session{ID: "c1"}, []string{"text"})
	assert.ErrorContains(t, err, "embedding service down")
	assert.Empty(t, repo.chunks)
}
