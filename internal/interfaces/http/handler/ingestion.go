package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/secondbrain/backend/internal/application/ingestion"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// IngestionHandler 导入处理器
type IngestionHandler struct {
	service *ingestion.Service
}

// NewIngestionHandler 创建导入处理器
func NewIngestionHandler(service *ingestion.Service) *IngestionHandler {
	return &IngestionHandler{service: service}
}

// Upload 上传文件并创建会话
// @Summary 上传文件
// @Tags 导入
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件"
// @Param user_id formData string false "用户 ID"
// @Success 200 {object} ingestion.UploadResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /upload [post]
func (h *IngestionHandler) Upload(c *gin.Context) {
	limit := h.service.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, ingestion.ErrFileTooLarge)
			return
		}
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > limit {
		writeError(c, ingestion.ErrFileTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.Upload(c.Request.Context(), &ingestion.UploadRequest{
		UserID:   resolveUserID(c, c.PostForm("user_id")),
		Filename: fh.Filename,
		Data:     data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// ProcessLinkRequest 链接导入请求
type ProcessLinkRequest struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// ProcessLink 导入网页或 YouTube 链接
// @Summary 导入链接
// @Tags 导入
// @Accept json
// @Produce json
// @Param body body ProcessLinkRequest true "链接"
// @Success 200 {object} ingestion.LinkResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /process-link [post]
func (h *IngestionHandler) ProcessLink(c *gin.Context) {
	var req ProcessLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.ProcessLink(c.Request.Context(), &ingestion.LinkRequest{
		UserID: resolveUserID(c, req.UserID),
		URL:    req.URL,
		Type:   req.Type,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}
