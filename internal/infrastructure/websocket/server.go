package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize 客户端只发送心跳，不需要大消息
	maxMessageSize = 4096
)

// Server 将 HTTP 请求升级为 WebSocket 并接入 Hub
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer 创建 WebSocket 服务端
func NewServer(hub *Hub, cfg *config.WebSocketConfig) *Server {
	readSize, writeSize := cfg.ReadBufferSize, cfg.WriteBufferSize
	if readSize <= 0 {
		readSize = 1024
	}
	if writeSize <= 0 {
		writeSize = 1024
	}
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readSize,
			WriteBufferSize: writeSize,
			// 来源校验由 CORS 中间件负责
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.NewModuleLogger("websocket", "server"),
	}
}

// HandleConnection 处理新的 WebSocket 连接
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err, "user_id", userID)
		return
	}

	c := NewConnection(userID)
	s.hub.Register(c)
	s.logger.Debug("Client connected", "user_id", userID)

	go s.writePump(conn, c)
	go s.readPump(conn, c)
}

// readPump 读取客户端消息，仅用于维持心跳与检测断开
func (s *Server) readPump(conn *websocket.Conn, c *Connection) {
	defer func() {
		s.hub.Unregister(c)
		_ = conn.Close()
		s.logger.Debug("Client disconnected", "user_id", c.UserID)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump 将 Hub 消息写给客户端并定期发送 ping
func (s *Server) writePump(conn *websocket.Conn, c *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
