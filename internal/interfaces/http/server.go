package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
	"github.com/secondbrain/backend/internal/interfaces/http/handler"
	"github.com/secondbrain/backend/internal/interfaces/http/middleware"
	"github.com/secondbrain/backend/internal/interfaces/mcp"

	_ "github.com/secondbrain/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router *gin.Engine
	addr   string
	server *http.Server
	logger *slog.Logger
}

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Ingestion    *handler.IngestionHandler
	Chat         *handler.ChatHandler
	Graph        *handler.GraphHandler
	Notification *handler.NotificationHandler
}

// NewHandlers 聚合处理器
func NewHandlers(
	ingestion *handler.IngestionHandler,
	chat *handler.ChatHandler,
	graph *handler.GraphHandler,
	notification *handler.NotificationHandler,
) *Handlers {
	return &Handlers{Ingestion: ingestion, Chat: chat, Graph: graph, Notification: notification}
}

// NewServer 创建 HTTP 服务器
func NewServer(
	serverCfg *config.ServerConfig,
	authCfg *config.AuthConfig,
	handlers *Handlers,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	logger := log.NewModuleLogger("http", "server")

	return &HTTPServer{
		router: NewRouter(serverCfg, authCfg, handlers, mcpServer, logger),
		addr:   serverCfg.Addr(),
		logger: logger,
	}
}

// NewRouter 注册中间件与路由
// 路由挂在根路径下，客户端写死了这些地址
func NewRouter(
	serverCfg *config.ServerConfig,
	authCfg *config.AuthConfig,
	h *Handlers,
	mcpServer *mcp.MCPServer,
	logger *slog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.CORS(serverCfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws/", "/mcp/"})),
		middleware.EnsureUTF8Body(),
		middleware.JWTAuth(authCfg.JWTSecret),
	)

	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)

	// 导入
	router.POST("/upload", h.Ingestion.Upload)
	router.POST("/process-link", h.Ingestion.ProcessLink)

	// 对话
	router.POST("/chat", h.Chat.Ask)
	router.GET("/history/:user_id", h.Chat.History)
	router.GET("/chat/:id", h.Chat.Get)
	router.PATCH("/chat/:id", h.Chat.Rename)
	router.DELETE("/chat/:id", h.Chat.Delete)
	router.DELETE("/reset", h.Chat.Reset)

	// 图谱
	router.GET("/graph/:user_id", h.Graph.Graph)

	// 通知
	router.GET("/notifications/:user_id", h.Notification.Recent)
	router.GET("/ws/:user_id", h.Notification.Connect)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP 端点
	if mcpServer != nil {
		mcpHandler := mcpServer.GetHandler()
		if secret := authCfg.JWTSecret; secret != "" {
			mcpHandler = mcpServer.GetAuthenticatedHandler(func(raw string) (string, error) {
				return middleware.ParseUserID(raw, secret)
			})
		}
		router.Any("/mcp/*path", gin.WrapH(mcpHandler))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return router
}

// Handler 返回路由，供测试使用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 监听配置的地址并启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve 在已有的 listener 上提供服务（单例锁拿到的 listener 直接复用）
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting", "addr", ln.Addr().String())

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
