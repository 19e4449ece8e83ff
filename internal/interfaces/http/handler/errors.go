package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	"github.com/secondbrain/backend/internal/application/ingestion"
	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
	"github.com/secondbrain/backend/internal/infrastructure/log"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

var errorLogger = log.NewModuleLogger("http", "handler")

// writeError 把领域错误映射为 HTTP 状态码和 {detail} 响应
func writeError(c *gin.Context, err error) {
	var (
		fetchErr   *extract.FetchError
		extractErr *extract.ExtractionError
		noTextErr  *extract.NoTextError
	)

	switch {
	case errors.Is(err, domainChat.ErrChatNotFound):
		response.Error(c, http.StatusNotFound, "Chat not found")
	case errors.Is(err, domainChat.ErrEmptyQuery),
		errors.Is(err, domainChat.ErrEmptyTitle),
		errors.Is(err, source.ErrEmptyURL):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, source.ErrUnsupportedFile):
		response.Error(c, http.StatusBadRequest,
			"Unsupported file type. Allowed: "+strings.Join(source.AllowedExtensions(), ", "))
	case errors.Is(err, ingestion.ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, extract.ErrLegacyXLS):
		response.Error(c, http.StatusUnprocessableEntity, extract.ErrLegacyXLS.Error())
	case errors.As(err, &noTextErr):
		response.Error(c, http.StatusUnprocessableEntity, "No text could be extracted from "+noTextErr.Name)
	case errors.Is(err, extract.ErrNoText):
		response.Error(c, http.StatusUnprocessableEntity, "No text could be extracted")
	case errors.As(err, &extractErr):
		response.Error(c, http.StatusUnprocessableEntity, extractErr.Error())
	case errors.As(err, &fetchErr):
		response.Error(c, http.StatusBadGateway, fetchErr.Error())
	case errors.Is(err, appChat.ErrLLMUnavailable):
		response.ErrorWithDetail(c, http.StatusServiceUnavailable, "llm_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, "request timed out")
	default:
		log.FromContext(c.Request.Context(), errorLogger).Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

// badRequest 请求体格式错误
func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
}
