package events

import "time"

// SourceEvent 来源导入事件
type SourceEvent struct {
	EventType  EventType
	User       string
	ChatID     string
	Title      string
	SourceType string
	Chunks     int
	// Err 导入失败原因，仅 SourceIngestFailed 使用
	Err       string
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *SourceEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *SourceEvent) Timestamp() time.Time {
	return e.EventTime
}

// UserID 实现 Event 接口
func (e *SourceEvent) UserID() string {
	return e.User
}
