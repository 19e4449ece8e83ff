package chat

import (
	"github.com/google/wire"

	appRAG "github.com/secondbrain/backend/internal/application/rag"
	"github.com/secondbrain/backend/internal/infrastructure/llm"
)

// ProviderSet 对话应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(Completer), new(*llm.Client)),
	wire.Bind(new(ContextRetriever), new(*appRAG.Retriever)),
	wire.Bind(new(SourceRemover), new(*appRAG.Indexer)),
)
