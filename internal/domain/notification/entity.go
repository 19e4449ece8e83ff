package notification

import "time"

// Notification 推送给用户的通知
type Notification struct {
	ID      string
	UserID  string
	Title   string
	Message string
	Type    Type
	// ChatID 关联的会话，客户端据此刷新历史或跳转
	ChatID    string
	CreatedAt time.Time
}

// Type 通知类型
type Type int

const (
	// TypeInfo 信息通知
	TypeInfo Type = iota + 1
	// TypeWarning 警告通知
	TypeWarning
	// TypeError 错误通知
	TypeError
)

// String 返回通知类型名称
func (t Type) String() string {
	switch t {
	case TypeWarning:
		return "warning"
	case TypeError:
		return "error"
	default:
		return "info"
	}
}
