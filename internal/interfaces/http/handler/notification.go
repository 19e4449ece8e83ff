package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/secondbrain/backend/internal/application/notification"
	"github.com/secondbrain/backend/internal/infrastructure/websocket"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *notification.Service
	ws      *websocket.Server
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(service *notification.Service, ws *websocket.Server) *NotificationHandler {
	return &NotificationHandler{service: service, ws: ws}
}

// RecentResponse 最近通知
type RecentResponse struct {
	Notifications []*notification.NotificationDTO `json:"notifications"`
}

// Recent 最近的通知
// @Summary 最近通知
// @Tags 通知
// @Produce json
// @Param user_id path string true "用户 ID"
// @Param limit query int false "数量，默认 20"
// @Success 200 {object} RecentResponse
// @Router /notifications/{user_id} [get]
func (h *NotificationHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := h.service.Recent(resolveUserID(c, c.Param("user_id")), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []*notification.NotificationDTO{}
	}
	response.Success(c, RecentResponse{Notifications: items})
}

// Connect 建立 websocket 连接接收通知
// @Summary 通知 websocket
// @Tags 通知
// @Param user_id path string true "用户 ID"
// @Router /ws/{user_id} [get]
func (h *NotificationHandler) Connect(c *gin.Context) {
	h.ws.HandleConnection(c.Writer, c.Request, resolveUserID(c, c.Param("user_id")))
}
