package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// WelcomeResponse 根路径响应
type WelcomeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Root 欢迎信息
// @Summary 服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} WelcomeResponse
// @Router / [get]
func Root(c *gin.Context) {
	response.Success(c, WelcomeResponse{Message: "Welcome to SecondBrain AI API", Status: "Active"})
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.StatusResponse
// @Router /health [get]
func Health(c *gin.Context) {
	response.Success(c, response.StatusResponse{Status: "ok"})
}
