package notification

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/domain/notification"
)

// ProviderSet 通知基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewMemoryRepository,
	NewWebSocketPusher,
	wire.Bind(
		new(notification.Repository),
		new(*MemoryRepository),
	),
)
