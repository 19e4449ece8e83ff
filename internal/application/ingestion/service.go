// Package ingestion 实现文件上传与链接导入用例
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/events"
	domainGraph "github.com/secondbrain/backend/internal/domain/graph"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// ErrFileTooLarge 上传文件超过大小限制
var ErrFileTooLarge = errors.New("file exceeds the upload size limit")

// TextExtractor 文件文本提取
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (source.Type, string, error)
}

// PageFetcher 远程页面抓取
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (*extract.Page, error)
	FetchYouTube(ctx context.Context, videoID string) (*extract.Page, error)
}

// SourceIndexer 来源片段索引
type SourceIndexer interface {
	Index(ctx context.Context, session *domainChat.Session, texts []string) (int, error)
	Delete(ctx context.Context, chatID string) error
}

// Service 导入服务
type Service struct {
	chats     domainChat.Repository
	extractor TextExtractor
	fetcher   PageFetcher
	indexer   SourceIndexer
	splitter  *Splitter
	bus       events.EventBus
	graphs    domainGraph.Invalidator
	cfg       *config.IngestionConfig
	logger    *slog.Logger
}

// NewService 创建导入服务
func NewService(
	chats domainChat.Repository,
	extractor TextExtractor,
	fetcher PageFetcher,
	indexer SourceIndexer,
	bus events.EventBus,
	graphs domainGraph.Invalidator,
	cfg *config.IngestionConfig,
) *Service {
	return &Service{
		chats:     chats,
		extractor: extractor,
		fetcher:   fetcher,
		indexer:   indexer,
		splitter:  NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		bus:       bus,
		graphs:    graphs,
		cfg:       cfg,
		logger:    log.NewModuleLogger("ingestion", "service"),
	}
}

// UploadRequest 上传请求
type UploadRequest struct {
	UserID   string
	Filename string
	Data     []byte
}

// UploadResult 上传结果
type UploadResult struct {
	ChatID   string      `json:"chat_id"`
	Filename string      `json:"filename"`
	Type     source.Type `json:"type"`
	// Content 提取出的文本，按预览长度截断
	Content string `json:"content"`
	Chunks  int    `json:"-"`
}

// MaxUploadBytes 上传大小上限
func (s *Service) MaxUploadBytes() int64 {
	mb := s.cfg.MaxUploadMB
	if mb <= 0 {
		mb = 25
	}
	return int64(mb) << 20
}

// Upload 导入上传的文件
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || !source.IsAllowedUpload(name) {
		return nil, source.ErrUnsupportedFile
	}
	if int64(len(req.Data)) > s.MaxUploadBytes() {
		return nil, ErrFileTooLarge
	}

	t, text, err := s.extractor.Extract(ctx, name, req.Data)
	if err != nil {
		return nil, err
	}

	session := &domainChat.Session{
		ID:            uuid.New().String(),
		UserID:        normalizeUser(req.UserID),
		Title:         name,
		SourceType:    t,
		SourceURL:     name,
		SourceContent: text,
	}
	chunks, err := s.ingest(ctx, session)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		ChatID:   session.ID,
		Filename: name,
		Type:     t,
		Content:  truncateRunes(text, s.cfg.PreviewChars),
		Chunks:   chunks,
	}, nil
}

// LinkRequest 链接导入请求
type LinkRequest struct {
	UserID string
	URL    string
	// Type 客户端给出的类型，仅作参考，服务端重新分类
	Type string
}

// LinkDetail 链接导入详情
type LinkDetail struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Chunks int    `json:"chunks"`
}

// LinkResult 链接导入结果
type LinkResult struct {
	ChatID string      `json:"chat_id"`
	Type   source.Type `json:"type"`
	Detail LinkDetail  `json:"detail"`
}

// ProcessLink 导入网页或 YouTube 视频
func (s *Service) ProcessLink(ctx context.Context, req *LinkRequest) (*LinkResult, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, source.ErrEmptyURL
	}

	t := source.ClassifyLink(rawURL)
	if req.Type != "" && req.Type != t.String() {
		s.logger.Debug("Client link type overridden", "client_type", req.Type, "type", t, "url", rawURL)
	}

	var (
		page      *extract.Page
		err       error
		sourceURL = rawURL
	)
	if t == source.TypeYouTube {
		videoID, _ := source.ExtractYouTubeID(rawURL)
		page, err = s.fetcher.FetchYouTube(ctx, videoID)
		sourceURL = videoID
	} else {
		page, err = s.fetcher.FetchPage(ctx, rawURL)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return nil, &extract.NoTextError{Name: rawURL}
	}

	session := &domainChat.Session{
		ID:            uuid.New().String(),
		UserID:        normalizeUser(req.UserID),
		Title:         page.Title,
		SourceType:    t,
		SourceURL:     sourceURL,
		SourceContent: strings.TrimSpace(page.Text),
	}
	chunks, err := s.ingest(ctx, session)
	if err != nil {
		return nil, err
	}

	return &LinkResult{
		ChatID: session.ID,
		Type:   t,
		Detail: LinkDetail{Title: session.Title, URL: rawURL, Chunks: chunks},
	}, nil
}

// ingest 创建会话、切分并索引，失败时回滚会话
func (s *Service) ingest(ctx context.Context, session *domainChat.Session) (int, error) {
	if err := s.chats.Create(ctx, session); err != nil {
		return 0, fmt.Errorf("failed to create chat: %w", err)
	}

	n, err := s.indexer.Index(ctx, session, s.splitter.Split(session.SourceContent))
	if err != nil {
		s.rollback(session.ID)
		return 0, fmt.Errorf("failed to index source: %w", err)
	}

	s.logger.Info("Source ingested",
		"chat_id", session.ID,
		"user_id", session.UserID,
		"type", session.SourceType,
		"title", session.Title,
		"chunks", n,
	)

	if err := s.graphs.Invalidate(ctx, session.UserID); err != nil {
		s.logger.Warn("Failed to invalidate graph cache", "user_id", session.UserID, "error", err)
	}
	s.bus.Publish(&events.SourceEvent{
		EventType:  events.SourceIngested,
		User:       session.UserID,
		ChatID:     session.ID,
		Title:      session.Title,
		SourceType: session.SourceType.String(),
		Chunks:     n,
		EventTime:  time.Now(),
	})
	return n, nil
}

// rollback 使用独立上下文，请求被取消时也要清理
func (s *Service) rollback(chatID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.indexer.Delete(ctx, chatID); err != nil {
		s.logger.Warn("Failed to roll back chunks", "chat_id", chatID, "error", err)
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		s.logger.Warn("Failed to roll back chat", "chat_id", chatID, "error", err)
	}
}

func normalizeUser(userID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return domainChat.DefaultUserID
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
