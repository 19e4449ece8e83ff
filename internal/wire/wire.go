//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/secondbrain/backend/internal/application"
	appNotification "github.com/secondbrain/backend/internal/application/notification"
	"github.com/secondbrain/backend/internal/domain/notification"
	"github.com/secondbrain/backend/internal/infrastructure"
	infraNotification "github.com/secondbrain/backend/internal/infrastructure/notification"
	"github.com/secondbrain/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + MCP + 后台任务）
func InitializeAll() (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		notification.NewService,    // 领域层（按需引入）
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		// 接口绑定：application.Pusher -> infrastructure.Pusher
		wire.Bind(
			new(appNotification.Pusher),
			new(*infraNotification.WebSocketPusher),
		),
		NewApp, // 组合所有服务的应用结构
	)
	return nil, nil, nil
}
