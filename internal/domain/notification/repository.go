package notification

// Repository 通知仓储接口
type Repository interface {
	Save(notification *Notification) error
	// FindByUser 按创建时间倒序返回最近 limit 条通知
	FindByUser(userID string, limit int) ([]*Notification, error)
}
