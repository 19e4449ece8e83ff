package watcher

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/infrastructure/config"
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() (events.EventBus, func()) {
	bus := NewEventBus()
	return bus, bus.Close
}

// ProvideInboxWatcher 提供收件箱监听器，未启用收件箱时返回 nil
func ProvideInboxWatcher(cfg *config.IngestionConfig, eventBus events.EventBus) (*InboxWatcher, error) {
	root := cfg.ResolveInboxDir()
	if root == "" {
		return nil, nil
	}
	return NewInboxWatcher(InboxConfig{Root: root}, eventBus)
}

// ProviderSet 监听器 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideInboxWatcher,
)
