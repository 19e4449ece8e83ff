// Package inbox 自动导入收件箱目录中的文件
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/secondbrain/backend/internal/application/ingestion"
	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/log"
	"github.com/secondbrain/backend/internal/infrastructure/watcher"
)

const (
	maxConcurrentIngests = 2
	ingestTimeout        = 5 * time.Minute
)

// Uploader 文件导入
type Uploader interface {
	Upload(ctx context.Context, req *ingestion.UploadRequest) (*ingestion.UploadResult, error)
}

// Service 收件箱导入服务
type Service struct {
	uploader Uploader
	bus      events.EventBus
	logger   *slog.Logger

	mu     sync.Mutex
	pool   *pool.Pool
	active map[string]struct{}
}

// NewService 创建收件箱导入服务
func NewService(uploader Uploader, bus events.EventBus) *Service {
	return &Service{
		uploader: uploader,
		bus:      bus,
		logger:   log.NewModuleLogger("inbox", "service"),
		active:   make(map[string]struct{}),
	}
}

// Start 订阅 InboxFileReady，文件在有限并发的协程池中导入
// 返回的函数取消订阅并等待进行中的导入完成
func (s *Service) Start() func() {
	s.mu.Lock()
	s.pool = pool.New().WithMaxGoroutines(maxConcurrentIngests)
	p := s.pool
	s.mu.Unlock()

	unsubscribe := s.bus.Subscribe(events.InboxFileReady, events.HandlerFunc(func(e events.Event) error {
		p.Go(func() {
			if err := s.HandleEvent(e); err != nil {
				s.logger.Warn("Inbox ingestion failed", "error", err)
			}
		})
		return nil
	}))

	return func() {
		unsubscribe()
		p.Wait()
	}
}

// HandleEvent 同步导入一个收件箱文件
func (s *Service) HandleEvent(e events.Event) error {
	ev, ok := e.(*events.InboxFileEvent)
	if !ok {
		return nil
	}

	name := filepath.Base(ev.Path)
	if !source.IsAllowedUpload(name) {
		s.logger.Debug("Skipping unsupported inbox file", "path", ev.Path)
		return nil
	}

	// 同一个文件可能被重复通知，进行中的忽略
	if !s.claim(ev.Path) {
		return nil
	}
	defer s.release(ev.Path)

	data, err := os.ReadFile(ev.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return s.fail(ev, name, fmt.Errorf("failed to read file: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	res, err := s.uploader.Upload(ctx, &ingestion.UploadRequest{
		UserID:   ev.User,
		Filename: name,
		Data:     data,
	})
	if err != nil {
		return s.fail(ev, name, err)
	}

	dest, err := moveToDone(ev.Path)
	if err != nil {
		s.logger.Warn("Failed to archive inbox file", "path", ev.Path, "error", err)
	}

	s.logger.Info("Inbox file ingested",
		"user_id", ev.User,
		"file", name,
		"chat_id", res.ChatID,
		"archived_to", dest,
	)
	return nil
}

func (s *Service) fail(ev *events.InboxFileEvent, name string, err error) error {
	s.bus.Publish(&events.SourceEvent{
		EventType: events.SourceIngestFailed,
		User:      ev.User,
		Title:     name,
		Err:       err.Error(),
		EventTime: time.Now(),
	})
	return fmt.Errorf("failed to ingest %s: %w", ev.Path, err)
}

func (s *Service) claim(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[path]; busy {
		return false
	}
	s.active[path] = struct{}{}
	return true
}

func (s *Service) release(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, path)
}

// moveToDone 把文件移到同级 .done 目录，重名时加时间戳前缀
func moveToDone(path string) (string, error) {
	doneDir := filepath.Join(filepath.Dir(path), watcher.DoneDirName)
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		return "", err
	}

	name := filepath.Base(path)
	dest := filepath.Join(doneDir, name)
	if _, err := os.Stat(dest); err == nil {
		stamp := strings.ReplaceAll(time.Now().Format("20060102-150405.000"), ".", "")
		dest = filepath.Join(doneDir, stamp+"-"+name)
	}
	return dest, os.Rename(path, dest)
}
