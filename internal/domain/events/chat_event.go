package events

import "time"

// ChatEvent 会话变更事件
type ChatEvent struct {
	EventType EventType
	User      string
	ChatID    string
	Title     string
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *ChatEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *ChatEvent) Timestamp() time.Time {
	return e.EventTime
}

// UserID 实现 Event 接口
func (e *ChatEvent) UserID() string {
	return e.User
}
