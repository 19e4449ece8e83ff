// Package chat 定义对话会话领域模型
package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/secondbrain/backend/internal/domain/source"
)

// Role 消息角色
type Role string

const (
	// RoleUser 用户消息
	RoleUser Role = "user"
	// RoleAI 模型回答
	RoleAI Role = "ai"
)

// DefaultUserID 未提供 user_id 时使用的用户
const DefaultUserID = "default"

// maxDerivedTitleRunes 由提问内容生成标题时的最大长度
const maxDerivedTitleRunes = 50

// Session 对话会话
// 一个会话最多挂载一个来源，general 会话没有来源
type Session struct {
	ID            string
	UserID        string
	Title         string
	SourceType    source.Type
	SourceURL     string
	SourceContent string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasSource 是否挂载了来源
func (s *Session) HasSource() bool {
	return !s.SourceType.IsGeneral()
}

// Metadata 返回会话元数据视图
func (s *Session) Metadata() Metadata {
	return Metadata{
		SourceType: s.SourceType,
		SourceURL:  s.SourceURL,
		Title:      s.Title,
		Content:    s.SourceContent,
	}
}

// Metadata 会话元数据（客户端用于决定是否展示来源查看器）
type Metadata struct {
	SourceType source.Type
	SourceURL  string
	Title      string
	Content    string
}

// Message 会话中的一条消息，只追加不修改
type Message struct {
	ID        string
	ChatID    string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// DeriveTitle 由首个提问生成会话标题
func DeriveTitle(query string) string {
	title := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(title) <= maxDerivedTitleRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxDerivedTitleRunes])) + "..."
}
