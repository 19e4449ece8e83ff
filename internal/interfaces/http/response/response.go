package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应，detail 为字符串或对象
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// ErrorDetail 结构化错误详情
type ErrorDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse 只有状态的响应
type StatusResponse struct {
	Status string `json:"status"`
}

// Success 成功响应，直接输出数据
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 字符串详情的错误响应
func Error(c *gin.Context, httpCode int, detail string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{Detail: detail})
}

// ErrorWithDetail 结构化详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, code, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{Detail: ErrorDetail{Error: code, Message: message}})
}
