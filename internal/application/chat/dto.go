package chat

import (
	"time"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/source"
)

// AskRequest 提问请求
type AskRequest struct {
	Query  string
	UserID string
	// ChatID 为空时新建会话
	ChatID string
	// Owner 非空时续聊只允许该用户的会话
	Owner       string
	SourceType  string
	SourceTitle string
	SourceURL   string
}

// AskResult 提问结果
type AskResult struct {
	Answer string `json:"answer"`
	ChatID string `json:"chat_id"`
}

// HistoryItem 历史记录条目
type HistoryItem struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	SourceType string        `json:"source_type"`
	SourceURL  string        `json:"source_url"`
	Bucket     source.Bucket `json:"bucket"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// HistoryDTO 用户的全部会话
type HistoryDTO struct {
	Chats []HistoryItem `json:"chats"`
}

// MessageDTO 会话消息
type MessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MetadataDTO 会话元数据
type MetadataDTO struct {
	SourceType string `json:"source_type"`
	SourceURL  string `json:"source_url"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// ChatDTO 会话详情
type ChatDTO struct {
	Messages []MessageDTO `json:"messages"`
	Metadata MetadataDTO  `json:"metadata"`
}

func toHistoryItem(s *domainChat.Session) HistoryItem {
	return HistoryItem{
		ID:         s.ID,
		Title:      s.Title,
		SourceType: s.SourceType.String(),
		SourceURL:  s.SourceURL,
		Bucket:     source.BucketOf(s.SourceType.String()),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func toChatDTO(s *domainChat.Session, msgs []*domainChat.Message) *ChatDTO {
	out := &ChatDTO{Messages: make([]MessageDTO, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, MessageDTO{Role: string(m.Role), Content: m.Content})
	}
	md := s.Metadata()
	out.Metadata = MetadataDTO{
		SourceType: md.SourceType.String(),
		SourceURL:  md.SourceURL,
		Title:      md.Title,
		Content:    md.Content,
	}
	return out
}
