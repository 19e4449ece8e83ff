package wire

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/secondbrain/backend/internal/application/inbox"
	appNotification "github.com/secondbrain/backend/internal/application/notification"
	appRAG "github.com/secondbrain/backend/internal/application/rag"
	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/discovery"
	applog "github.com/secondbrain/backend/internal/infrastructure/log"
	"github.com/secondbrain/backend/internal/infrastructure/watcher"
	"github.com/secondbrain/backend/internal/infrastructure/websocket"
	"github.com/secondbrain/backend/internal/interfaces"
	"github.com/secondbrain/backend/internal/interfaces/mcp"
)

// reindexTimeout 启动时重建向量索引的超时
const reindexTimeout = 2 * time.Minute

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer          *interfaces.HTTPServer
	wsHub               *websocket.Hub
	notificationService *appNotification.Service
	inboxService        *inbox.Service
	inboxWatcher        *watcher.InboxWatcher // 未配置收件箱时为 nil
	indexer             *appRAG.Indexer
	advertiser          *discovery.Advertiser
	discoveryCfg        *config.DiscoveryConfig
	serverCfg           *config.ServerConfig
	vectorCfg           *config.VectorConfig
	eventBus            events.EventBus
	db                  *sql.DB
	logger              *slog.Logger

	// 事件订阅的取消函数，Stop 时逆序调用
	stopFuncs []func()
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	wsHub *websocket.Hub,
	notificationService *appNotification.Service,
	inboxService *inbox.Service,
	inboxWatcher *watcher.InboxWatcher,
	indexer *appRAG.Indexer,
	advertiser *discovery.Advertiser,
	discoveryCfg *config.DiscoveryConfig,
	serverCfg *config.ServerConfig,
	vectorCfg *config.VectorConfig,
	eventBus events.EventBus,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer:          httpServer,
		wsHub:               wsHub,
		notificationService: notificationService,
		inboxService:        inboxService,
		inboxWatcher:        inboxWatcher,
		indexer:             indexer,
		advertiser:          advertiser,
		discoveryCfg:        discoveryCfg,
		serverCfg:           serverCfg,
		vectorCfg:           vectorCfg,
		eventBus:            eventBus,
		db:                  db,
		logger:              applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务。ln 为单例锁获得的 listener，为 nil 时由 HTTP 服务器自行监听
func (a *App) Start(ln net.Listener) error {
	a.logger.Info("Starting SecondBrain backend application")

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 注册事件订阅者
	a.stopFuncs = append(a.stopFuncs,
		a.notificationService.Subscribe(a.eventBus),
		a.inboxService.Start(),
	)

	// 内存向量库不持久化，启动时从 SQLite 中的分块重建
	if strings.EqualFold(a.vectorCfg.Backend, "memory") || a.vectorCfg.Backend == "" {
		ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
		n, err := a.indexer.Reindex(ctx)
		cancel()
		if err != nil {
			a.logger.Error("Failed to rebuild vector index",
				"error", err,
			)
		} else {
			a.logger.Info("Vector index rebuilt", "chunks", n)
		}
	}

	if a.inboxWatcher != nil {
		if err := a.inboxWatcher.Start(); err != nil {
			a.logger.Error("Failed to start inbox watcher",
				"error", err,
			)
		} else {
			a.logger.Info("Inbox watcher started successfully")
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		var err error
		if ln != nil {
			err = a.HTTPServer.Serve(ln)
		} else {
			err = a.HTTPServer.Start()
		}
		if err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	if a.discoveryCfg.Enabled {
		port := listenPort(ln, a.serverCfg.HTTPPort)
		txt := map[string]string{"version": mcp.Version, "path": "/"}
		if err := a.advertiser.Start(a.discoveryCfg.InstanceName, port, txt); err != nil {
			a.logger.Warn("Failed to start mDNS advertiser",
				"error", err,
			)
		}
	}

	a.logger.Info("SecondBrain backend application started successfully")
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping SecondBrain backend application")

	a.advertiser.Stop()

	if a.inboxWatcher != nil {
		a.inboxWatcher.Stop()
		a.logger.Info("Inbox watcher stopped")
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
	}

	for i := len(a.stopFuncs) - 1; i >= 0; i-- {
		a.stopFuncs[i]()
	}
	a.stopFuncs = nil

	// 关闭事件总线
	if a.eventBus != nil {
		a.eventBus.Close()
		a.logger.Info("Event bus closed")
	}

	a.wsHub.Stop()

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("SecondBrain backend application stopped successfully")
	return nil
}

// listenPort 解析实际监听端口
func listenPort(ln net.Listener, fallback string) int {
	if ln != nil {
		if addr, ok := ln.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	port, _ := strconv.Atoi(strings.TrimPrefix(fallback, ":"))
	return port
}
