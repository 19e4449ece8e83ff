package notification

import "errors"

var (
	// ErrInvalidUser 无效的用户
	ErrInvalidUser = errors.New("invalid user id")
	// ErrInvalidTitle 无效的标题
	ErrInvalidTitle = errors.New("invalid title")
)

// Service 领域服务（纯业务逻辑）
type Service struct{}

// NewService 创建领域服务
func NewService() *Service {
	return &Service{}
}

// Validate 验证通知内容
func (s *Service) Validate(n *Notification) error {
	if n.UserID == "" {
		return ErrInvalidUser
	}
	if n.Title == "" {
		return ErrInvalidTitle
	}
	return nil
}
