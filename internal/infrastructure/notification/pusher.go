package notification

import (
	"github.com/secondbrain/backend/internal/application/notification"
	"github.com/secondbrain/backend/internal/infrastructure/websocket"
)

// WebSocketPusher WebSocket 推送实现
type WebSocketPusher struct {
	hub *websocket.Hub
}

// NewWebSocketPusher 创建 WebSocket 推送器
func NewWebSocketPusher(hub *websocket.Hub) *WebSocketPusher {
	return &WebSocketPusher{hub: hub}
}

// PushToUser 推送到用户的所有连接
func (p *WebSocketPusher) PushToUser(userID string, payload any) error {
	return p.hub.BroadcastToUser(userID, payload)
}

// 编译时检查接口实现
var _ notification.Pusher = (*WebSocketPusher)(nil)
