package handler

import (
	"github.com/gin-gonic/gin"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	service *appChat.Service
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service *appChat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// AskRequest 提问请求，chat_id 为 null 时新建会话
type AskRequest struct {
	Query       string  `json:"query"`
	UserID      string  `json:"user_id"`
	ChatID      *string `json:"chat_id"`
	SourceType  string  `json:"source_type"`
	SourceTitle string  `json:"source_title"`
	SourceURL   string  `json:"source_url"`
}

// Ask 提问
// @Summary 提问
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body AskRequest true "提问"
// @Success 200 {object} appChat.AskResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	chatID := ""
	if req.ChatID != nil {
		chatID = *req.ChatID
	}

	result, err := h.service.Ask(c.Request.Context(), &appChat.AskRequest{
		Query:       req.Query,
		UserID:      resolveUserID(c, req.UserID),
		ChatID:      chatID,
		Owner:       callerID(c),
		SourceType:  req.SourceType,
		SourceTitle: req.SourceTitle,
		SourceURL:   req.SourceURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// History 用户的会话历史
// @Summary 会话历史
// @Tags 对话
// @Produce json
// @Param user_id path string true "用户 ID"
// @Success 200 {object} appChat.HistoryDTO
// @Router /history/{user_id} [get]
func (h *ChatHandler) History(c *gin.Context) {
	result, err := h.service.History(c.Request.Context(), resolveUserID(c, c.Param("user_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Get 会话详情
// @Summary 会话详情
// @Tags 对话
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} appChat.ChatDTO
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// RenameRequest 重命名请求
type RenameRequest struct {
	NewTitle string `json:"new_title"`
}

// RenameResponse 重命名响应
type RenameResponse struct {
	Status string `json:"status"`
	ChatID string `json:"chat_id"`
	Title  string `json:"title"`
}

// Rename 重命名会话
// @Summary 重命名会话
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "会话 ID"
// @Param body body RenameRequest true "新标题"
// @Success 200 {object} RenameResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/{id} [patch]
func (h *ChatHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.service.Rename(c.Request.Context(), c.Param("id"), callerID(c), req.NewTitle)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, RenameResponse{Status: "renamed", ChatID: session.ID, Title: session.Title})
}

// DeleteResponse 删除响应
type DeleteResponse struct {
	Status string `json:"status"`
	ChatID string `json:"chat_id"`
}

// Delete 删除会话
// @Summary 删除会话
// @Tags 对话
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/{id} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id, callerID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, DeleteResponse{Status: "deleted", ChatID: id})
}

// Reset 删除当前用户的全部会话（旧版客户端使用），未启用鉴权时为 default
// @Summary 重置当前用户
// @Tags 对话
// @Produce json
// @Success 200 {object} response.StatusResponse
// @Router /reset [delete]
func (h *ChatHandler) Reset(c *gin.Context) {
	if _, err := h.service.Reset(c.Request.Context(), resolveUserID(c, "")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.StatusResponse{Status: "reset"})
}
