package embedding

import (
	"github.com/google/wire"

	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// ProvideEmbedder 按配置选择远程 Embedding 服务或本地哈希向量
func ProvideEmbedder(cfg *config.EmbeddingConfig) domainRAG.Embedder {
	logger := log.NewModuleLogger("embedding", "provider")
	if cfg.Configured() {
		logger.Info("Using remote embedding API", "base_url", cfg.BaseURL, "model", cfg.Model)
		return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
	}
	logger.Info("Embedding API not configured, using local hashing embedder", "dimensions", cfg.Dimensions)
	return NewHashingEmbedder(cfg.Dimensions)
}

// ProviderSet Embedding 基础设施 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEmbedder,
)
