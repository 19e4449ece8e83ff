package notification

// Pusher 推送接口（定义在 application 层）
type Pusher interface {
	PushToUser(userID string, payload any) error
}
