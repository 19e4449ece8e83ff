package storage

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/domain/chat"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,          // 提供数据库连接
	NewChatRepository,  // 会话仓储
	NewChunkRepository, // 知识片段仓储
	wire.Bind(new(chat.Repository), new(*ChatRepository)),
	wire.Bind(new(domainRAG.ChunkRepository), new(*ChunkRepository)),
)
