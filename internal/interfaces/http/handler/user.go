package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/interfaces/http/middleware"
)

// resolveUserID 返回本次请求的用户
// 启用鉴权时以令牌中的 user_id 为准，否则使用请求给出的值，为空时为 default
func resolveUserID(c *gin.Context, requested string) string {
	if id := callerID(c); id != "" {
		return id
	}
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	return domainChat.DefaultUserID
}

// callerID 返回令牌中的用户，未启用鉴权时为空
func callerID(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		id, _ := v.(string)
		return id
	}
	return ""
}
