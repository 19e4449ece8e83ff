package application

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/application/chat"
	"github.com/secondbrain/backend/internal/application/graph"
	"github.com/secondbrain/backend/internal/application/inbox"
	"github.com/secondbrain/backend/internal/application/ingestion"
	"github.com/secondbrain/backend/internal/application/notification"
	"github.com/secondbrain/backend/internal/application/rag"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	notification.ProviderSet,
	rag.ProviderSet,
	ingestion.ProviderSet,
	chat.ProviderSet,
	graph.ProviderSet,
	inbox.ProviderSet,
)
