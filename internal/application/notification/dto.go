package notification

// CreateNotificationDTO 创建通知请求
type CreateNotificationDTO struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    int    `json:"type"`
	ChatID  string `json:"chat_id,omitempty"`
}

// NotificationDTO 通知（同时作为 WebSocket 推送的消息体）
type NotificationDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Event     string `json:"event,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	CreatedAt string `json:"created_at"`
}
