package infrastructure

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/infrastructure/cache"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/discovery"
	"github.com/secondbrain/backend/internal/infrastructure/embedding"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
	"github.com/secondbrain/backend/internal/infrastructure/llm"
	"github.com/secondbrain/backend/internal/infrastructure/notification"
	"github.com/secondbrain/backend/internal/infrastructure/storage"
	"github.com/secondbrain/backend/internal/infrastructure/tokenizer"
	"github.com/secondbrain/backend/internal/infrastructure/vector"
	"github.com/secondbrain/backend/internal/infrastructure/watcher"
	"github.com/secondbrain/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	embedding.ProviderSet,
	vector.ProviderSet,
	llm.ProviderSet,
	extract.ProviderSet,
	cache.ProviderSet,
	tokenizer.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
	watcher.ProviderSet,
	discovery.ProviderSet,
)
