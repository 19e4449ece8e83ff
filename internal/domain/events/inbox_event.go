package events

import "time"

// InboxFileEvent 收件箱文件事件
type InboxFileEvent struct {
	User      string
	Path      string
	Size      int64
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *InboxFileEvent) Type() EventType {
	return InboxFileReady
}

// Timestamp 实现 Event 接口
func (e *InboxFileEvent) Timestamp() time.Time {
	return e.EventTime
}

// UserID 实现 Event 接口
func (e *InboxFileEvent) UserID() string {
	return e.User
}
