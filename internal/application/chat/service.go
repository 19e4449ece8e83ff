// Package chat 实现对话相关用例：提问、历史、重命名与删除
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/events"
	domainGraph "github.com/secondbrain/backend/internal/domain/graph"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/cache"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/llm"
	"github.com/secondbrain/backend/internal/infrastructure/log"
	"github.com/secondbrain/backend/internal/infrastructure/tokenizer"
)

// ErrLLMUnavailable 模型未配置或重试后仍失败
var ErrLLMUnavailable = errors.New("llm unavailable")

// fallbackContextRunes 向量检索无结果时截取来源正文的长度
const fallbackContextRunes = 4000

// Completer 对话模型
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// ContextRetriever 检索会话来源中的相关片段
type ContextRetriever interface {
	Retrieve(ctx context.Context, chatID, query string) ([]domainRAG.SearchHit, error)
}

// SourceRemover 删除会话的片段与向量
type SourceRemover interface {
	Delete(ctx context.Context, chatID string) error
}

// Service 对话服务
type Service struct {
	chats     domainChat.Repository
	completer Completer
	retriever ContextRetriever
	remover   SourceRemover
	locker    cache.Locker
	prompts   *PromptBuilder
	bus       events.EventBus
	graphs    domainGraph.Invalidator
	logger    *slog.Logger
}

// NewService 创建对话服务
func NewService(
	chats domainChat.Repository,
	completer Completer,
	retriever ContextRetriever,
	remover SourceRemover,
	locker cache.Locker,
	counter tokenizer.Counter,
	bus events.EventBus,
	graphs domainGraph.Invalidator,
	cfg *config.LLMConfig,
) *Service {
	return &Service{
		chats:     chats,
		completer: completer,
		retriever: retriever,
		remover:   remover,
		locker:    locker,
		prompts:   NewPromptBuilder(counter, cfg.MaxPromptTokens),
		bus:       bus,
		graphs:    graphs,
		logger:    log.NewModuleLogger("chat", "service"),
	}
}

// Ask 在会话中提问，chat_id 为空时新建会话
// 新会话在模型成功回答后才落库
func (s *Service) Ask(ctx context.Context, req *AskRequest) (*AskResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domainChat.ErrEmptyQuery
	}

	var (
		session *domainChat.Session
		history []*domainChat.Message
		isNew   bool
	)

	if chatID := strings.TrimSpace(req.ChatID); chatID != "" {
		if _, err := s.find(ctx, chatID, req.Owner); err != nil {
			return nil, err
		}
		unlock, err := s.locker.Lock(ctx, "chat:"+chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock chat: %w", err)
		}
		defer unlock()

		// 持锁后重新读取，拿到并发提问写入的历史
		if session, err = s.chats.FindByID(ctx, chatID); err != nil {
			return nil, err
		}
		if history, err = s.chats.ListMessages(ctx, chatID); err != nil {
			return nil, err
		}
	} else {
		session = newSession(req, query)
		isNew = true
	}

	if !s.completer.Configured() {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, llm.ErrNotConfigured)
	}

	prompt := s.prompts.Build(s.contextFor(ctx, session, query), history, query)
	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("LLM completion failed", "chat_id", session.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	if isNew {
		if err := s.chats.Create(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to create chat: %w", err)
		}
		s.changed(ctx, events.ChatCreated, session)
	}

	err = s.chats.AppendMessages(ctx, session.ID,
		&domainChat.Message{ID: uuid.New().String(), Role: domainChat.RoleUser, Content: query},
		&domainChat.Message{ID: uuid.New().String(), Role: domainChat.RoleAI, Content: answer},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save messages: %w", err)
	}

	s.logger.Info("Question answered",
		"chat_id", session.ID,
		"user_id", session.UserID,
		"new_chat", isNew,
		"history", len(history),
	)
	return &AskResult{Answer: answer, ChatID: session.ID}, nil
}

// contextFor 检索来源片段，失败时退化为来源正文开头
func (s *Service) contextFor(ctx context.Context, session *domainChat.Session, query string) []string {
	if !session.HasSource() {
		return nil
	}

	hits, err := s.retriever.Retrieve(ctx, session.ID, query)
	if err != nil {
		s.logger.Warn("Retrieval failed, falling back to source content", "chat_id", session.ID, "error", err)
	}
	if len(hits) > 0 {
		out := make([]string, 0, len(hits))
		for _, h := range hits {
			out = append(out, h.Content)
		}
		return out
	}

	if content := strings.TrimSpace(session.SourceContent); content != "" {
		if utf8.RuneCountInString(content) > fallbackContextRunes {
			content = string([]rune(content)[:fallbackContextRunes])
		}
		return []string{content}
	}
	return nil
}

// History 列出用户的会话，按更新时间倒序
func (s *Service) History(ctx context.Context, userID string) (*HistoryDTO, error) {
	sessions, err := s.chats.FindByUser(ctx, normalizeUser(userID))
	if err != nil {
		return nil, err
	}
	out := &HistoryDTO{Chats: make([]HistoryItem, 0, len(sessions))}
	for _, sess := range sessions {
		out.Chats = append(out.Chats, toHistoryItem(sess))
	}
	return out, nil
}

// find 读取会话，owner 非空时只返回该用户的会话
// 他人的会话与不存在的会话一样返回 ErrChatNotFound
func (s *Service) find(ctx context.Context, chatID, owner string) (*domainChat.Session, error) {
	session, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if owner != "" && session.UserID != owner {
		s.logger.Warn("Chat access denied", "chat_id", chatID, "owner", session.UserID, "caller", owner)
		return nil, domainChat.ErrChatNotFound
	}
	return session, nil
}

// Get 返回会话消息与元数据，owner 为空时不校验归属
func (s *Service) Get(ctx context.Context, chatID, owner string) (*ChatDTO, error) {
	session, err := s.find(ctx, chatID, owner)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return toChatDTO(session, msgs), nil
}

// Rename 修改会话标题
func (s *Service) Rename(ctx context.Context, chatID, owner, title string) (*domainChat.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainChat.ErrEmptyTitle
	}

	session, err := s.find(ctx, chatID, owner)
	if err != nil {
		return nil, err
	}
	if err := s.chats.UpdateTitle(ctx, chatID, title); err != nil {
		return nil, err
	}
	session.Title = title

	s.changed(ctx, events.ChatRenamed, session)
	return session, nil
}

// Delete 删除会话及其消息、片段和向量
func (s *Service) Delete(ctx context.Context, chatID, owner string) error {
	session, err := s.find(ctx, chatID, owner)
	if err != nil {
		return err
	}

	if session.HasSource() {
		if err := s.remover.Delete(ctx, chatID); err != nil {
			return fmt.Errorf("failed to remove chunks: %w", err)
		}
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return err
	}

	s.logger.Info("Chat deleted", "chat_id", chatID, "user_id", session.UserID)
	s.changed(ctx, events.ChatDeleted, session)
	return nil
}

// Reset 删除用户的全部会话，返回删除数量；userID 为空时为 default
func (s *Service) Reset(ctx context.Context, userID string) (int, error) {
	sessions, err := s.chats.FindByUser(ctx, normalizeUser(userID))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, sess := range sessions {
		err := s.Delete(ctx, sess.ID, "")
		if errors.Is(err, domainChat.ErrChatNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// changed 同步失效图谱缓存后再发布事件
func (s *Service) changed(ctx context.Context, t events.EventType, session *domainChat.Session) {
	if err := s.graphs.Invalidate(ctx, session.UserID); err != nil {
		s.logger.Warn("Failed to invalidate graph cache", "user_id", session.UserID, "error", err)
	}
	s.publish(t, session)
}

func (s *Service) publish(t events.EventType, session *domainChat.Session) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.ChatEvent{
		EventType: t,
		User:      session.UserID,
		ChatID:    session.ID,
		Title:     session.Title,
		EventTime: time.Now(),
	})
}

// newSession 根据提问请求构造尚未落库的会话
func newSession(req *AskRequest, query string) *domainChat.Session {
	title := strings.TrimSpace(req.SourceTitle)
	if title == "" {
		title = domainChat.DeriveTitle(query)
	}

	sourceURL := strings.TrimSpace(req.SourceURL)
	sourceType := source.Type(strings.TrimSpace(req.SourceType))
	if sourceType == "" || sourceURL == "" {
		sourceType = source.TypeGeneral
		sourceURL = ""
	}

	switch sourceType {
	case source.TypeYouTube, source.TypeWeb, source.TypeWebsite:
		// 已入库的 YouTube 来源只保存视频 ID，只有完整链接才重新分类
		if strings.Contains(sourceURL, "://") {
			sourceType = source.ClassifyLink(sourceURL)
			if id, ok := source.ExtractYouTubeID(sourceURL); ok && sourceType == source.TypeYouTube {
				sourceURL = id
			}
		}
	}

	return &domainChat.Session{
		ID:         uuid.New().String(),
		UserID:     normalizeUser(req.UserID),
		Title:      title,
		SourceType: sourceType,
		SourceURL:  sourceURL,
	}
}

func normalizeUser(userID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return domainChat.DefaultUserID
}
