package chat

import "context"

// Repository 会话仓储接口
type Repository interface {
	// Create 创建会话
	Create(ctx context.Context, s *Session) error
	// FindByID 按 ID 查找会话，不存在时返回 ErrChatNotFound
	FindByID(ctx context.Context, id string) (*Session, error)
	// FindByUser 按用户列出会话，按更新时间倒序
	FindByUser(ctx context.Context, userID string) ([]*Session, error)
	// UpdateTitle 修改标题
	UpdateTitle(ctx context.Context, id, title string) error
	// Delete 删除会话及其消息
	Delete(ctx context.Context, id string) error

	// AppendMessages 按顺序追加消息
	AppendMessages(ctx context.Context, chatID string, msgs ...*Message) error
	// ListMessages 按插入顺序列出消息
	ListMessages(ctx context.Context, chatID string) ([]*Message, error)
}
