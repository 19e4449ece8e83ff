package vector

import (
	"fmt"

	"github.com/google/wire"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// ProvideStore 按配置选择向量库
func ProvideStore(cfg *config.VectorConfig) (domainRAG.VectorStore, func(), error) {
	logger := log.NewModuleLogger("vector", "provider")

	switch cfg.Backend {
	case "qdrant":
		store, err := NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using qdrant vector store",
			"host", cfg.QdrantHost,
			"port", cfg.QdrantPort,
			"collection", cfg.Collection,
		)
		return store, func() { _ = store.Close() }, nil
	case "memory":
		logger.Info("Using in-memory vector store")
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}

// ProviderSet 向量库 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideStore,
)
