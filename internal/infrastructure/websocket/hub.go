package websocket

import (
	"encoding/json"
	"sync"
)

// Hub WebSocket 连接管理中心，按用户分组
type Hub struct {
	users      map[string]map[*Connection]bool
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// Connection 单个客户端连接
type Connection struct {
	UserID string
	Send   chan []byte
}

// NewConnection 创建连接
func NewConnection(userID string) *Connection {
	return &Connection{UserID: userID, Send: make(chan []byte, 64)}
}

// Message 待广播的消息
type Message struct {
	UserID string
	Data   []byte
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 64),
		done:       make(chan struct{}),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.users[conn.UserID] == nil {
				h.users[conn.UserID] = make(map[*Connection]bool)
			}
			h.users[conn.UserID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.users[msg.UserID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// 客户端消费过慢，断开
					h.remove(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove 调用方需持有写锁
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.users[conn.UserID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.users, conn.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.users {
		for conn := range conns {
			h.remove(conn)
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Stop 停止 Hub 并关闭所有连接
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// ConnectionCount 用户当前的连接数
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// BroadcastToUser 向用户的所有连接广播
func (h *Hub) BroadcastToUser(userID string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &Message{UserID: userID, Data: jsonData}:
	case <-h.done:
	}
	return nil
}
