package mcp

import (
	"github.com/google/wire"

	appRAG "github.com/secondbrain/backend/internal/application/rag"
)

// ProviderSet MCP 接口层 ProviderSet
var ProviderSet = wire.NewSet(
	NewServer,
	wire.Bind(new(KnowledgeSearcher), new(*appRAG.Retriever)),
)
