package ingestion

import (
	"github.com/google/wire"

	appRAG "github.com/secondbrain/backend/internal/application/rag"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
)

// ProviderSet 导入应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(TextExtractor), new(*extract.Registry)),
	wire.Bind(new(PageFetcher), new(*extract.Fetcher)),
	wire.Bind(new(SourceIndexer), new(*appRAG.Indexer)),
)
