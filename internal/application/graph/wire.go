package graph

import (
	"github.com/google/wire"

	domainGraph "github.com/secondbrain/backend/internal/domain/graph"
)

// ProviderSet 知识图谱应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewBuilder,
	wire.Bind(new(domainGraph.Invalidator), new(*Builder)),
)
