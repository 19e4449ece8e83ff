// Package events 定义领域事件类型和接口
// 用于导入、会话变更与通知之间的解耦
package events

import "time"

// EventType 事件类型标识
type EventType string

// 来源导入相关事件类型
const (
	// SourceIngested 来源导入完成
	SourceIngested EventType = "source.ingested"
	// SourceIngestFailed 来源导入失败（目前仅收件箱自动导入会发布）
	SourceIngestFailed EventType = "source.ingest_failed"
)

// 收件箱相关事件类型
const (
	// InboxFileReady 收件箱中出现了待导入的文件
	InboxFileReady EventType = "inbox.file_ready"
)

// 会话相关事件类型
const (
	// ChatCreated 会话创建
	ChatCreated EventType = "chat.created"
	// ChatRenamed 会话重命名
	ChatRenamed EventType = "chat.renamed"
	// ChatDeleted 会话删除
	ChatDeleted EventType = "chat.deleted"
)

// Event 领域事件接口
// 所有事件都必须能给出所属用户，订阅者据此失效缓存或推送通知
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
	// UserID 返回事件所属用户
	UserID() string
}
