package chat

import "errors"

var (
	// ErrChatNotFound 会话不存在
	ErrChatNotFound = errors.New("chat not found")
	// ErrEmptyTitle 标题为空
	ErrEmptyTitle = errors.New("title must not be empty")
	// ErrEmptyQuery 提问为空
	ErrEmptyQuery = errors.New("query is required")
)
