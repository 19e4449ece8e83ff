package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// DoneDirName 已导入文件的归档目录名
const DoneDirName = ".done"

// InboxConfig 收件箱监听配置
type InboxConfig struct {
	// Root 收件箱根目录，结构为 <root>/<user_id>/<file>
	Root string
	// DebounceDelay 防抖延迟，等待文件写完
	DebounceDelay time.Duration
}

// InboxWatcher 监听收件箱目录并发布 InboxFileReady 事件
type InboxWatcher struct {
	config   InboxConfig
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewInboxWatcher 创建收件箱监听器
func NewInboxWatcher(config InboxConfig, eventBus events.EventBus) (*InboxWatcher, error) {
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &InboxWatcher{
		config:         config,
		eventBus:       eventBus,
		watcher:        w,
		logger:         log.NewModuleLogger("watcher", "inbox"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}, nil
}

// Start 创建根目录，发布已存在的文件并开始监听
func (iw *InboxWatcher) Start() error {
	if err := os.MkdirAll(iw.config.Root, 0o755); err != nil {
		return err
	}
	if err := iw.watcher.Add(iw.config.Root); err != nil {
		return err
	}

	entries, err := os.ReadDir(iw.config.Root)
	if err != nil {
		return err
	}
	pending := 0
	for _, entry := range entries {
		if entry.IsDir() && !isHidden(entry.Name()) {
			pending += iw.addUserDir(filepath.Join(iw.config.Root, entry.Name()))
		}
	}

	iw.logger.Info("Inbox watcher started", "root", iw.config.Root, "pending_files", pending)

	iw.wg.Add(1)
	go iw.watchLoop()
	return nil
}

// Stop 停止监听
func (iw *InboxWatcher) Stop() {
	iw.stopOnce.Do(func() {
		close(iw.stopCh)
		_ = iw.watcher.Close()
		iw.wg.Wait()

		iw.debounceMu.Lock()
		for _, timer := range iw.debounceTimers {
			timer.Stop()
		}
		iw.debounceMu.Unlock()

		iw.logger.Info("Inbox watcher stopped")
	})
}

// addUserDir 监听用户目录，并发布其中已存在的文件
func (iw *InboxWatcher) addUserDir(dir string) int {
	if err := iw.watcher.Add(dir); err != nil {
		iw.logger.Warn("Failed to watch user inbox", "path", dir, "error", err)
		return 0
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, f := range files {
		if f.IsDir() || isHidden(f.Name()) {
			continue
		}
		iw.emit(filepath.Join(dir, f.Name()))
		count++
	}
	return count
}

// watchLoop 事件监听循环
func (iw *InboxWatcher) watchLoop() {
	defer iw.wg.Done()

	for {
		select {
		case <-iw.stopCh:
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			iw.handleFsEvent(event)

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			iw.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件
func (iw *InboxWatcher) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	rel, err := filepath.Rel(iw.config.Root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}

	switch depth := len(strings.Split(rel, string(filepath.Separator))); depth {
	case 1:
		// 新的用户目录
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && event.Has(fsnotify.Create) {
			iw.addUserDir(event.Name)
		}
	case 2:
		iw.debounce(event.Name)
	}
}

// debounce 同一文件在延迟内的多次写入只发布一次
func (iw *InboxWatcher) debounce(path string) {
	iw.debounceMu.Lock()
	defer iw.debounceMu.Unlock()

	if timer, exists := iw.debounceTimers[path]; exists {
		timer.Stop()
	}
	iw.debounceTimers[path] = time.AfterFunc(iw.config.DebounceDelay, func() {
		iw.debounceMu.Lock()
		delete(iw.debounceTimers, path)
		iw.debounceMu.Unlock()

		iw.emit(path)
	})
}

// emit 发布文件就绪事件
func (iw *InboxWatcher) emit(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	userID := filepath.Base(filepath.Dir(path))
	iw.eventBus.Publish(&events.InboxFileEvent{
		User:      userID,
		Path:      path,
		Size:      info.Size(),
		EventTime: time.Now(),
	})

	iw.logger.Debug("Inbox file ready", "user_id", userID, "path", path)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
