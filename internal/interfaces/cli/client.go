// Package cli 实现 sbctl 命令行客户端
package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	"github.com/secondbrain/backend/internal/application/ingestion"
	domainGraph "github.com/secondbrain/backend/internal/domain/graph"
	"github.com/secondbrain/backend/internal/interfaces/http/handler"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// APIError 服务端返回的错误
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// Client SecondBrain HTTP API 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建客户端，token 为空时不携带 Authorization
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// History 获取会话历史
func (c *Client) History(ctx context.Context, userID string) (*appChat.HistoryDTO, error) {
	var out appChat.HistoryDTO
	err := c.do(c.http.R().SetContext(ctx), http.MethodGet, "/history/"+url.PathEscape(userID), &out)
	return &out, err
}

// Upload 上传本地文件
func (c *Client) Upload(ctx context.Context, userID, path string) (*ingestion.UploadResult, error) {
	var out ingestion.UploadResult
	req := c.http.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(map[string]string{"user_id": userID})
	err := c.do(req, http.MethodPost, "/upload", &out)
	return &out, err
}

// ProcessLink 导入网页或 YouTube 链接
func (c *Client) ProcessLink(ctx context.Context, userID, link string) (*ingestion.LinkResult, error) {
	var out ingestion.LinkResult
	req := c.http.R().
		SetContext(ctx).
		SetBody(&handler.ProcessLinkRequest{URL: link, UserID: userID})
	err := c.do(req, http.MethodPost, "/process-link", &out)
	return &out, err
}

// Ask 提问，chatID 为空时开启新会话
func (c *Client) Ask(ctx context.Context, userID, chatID, query string) (*appChat.AskResult, error) {
	body := &handler.AskRequest{Query: query, UserID: userID}
	if chatID != "" {
		body.ChatID = &chatID
	}
	var out appChat.AskResult
	err := c.do(c.http.R().SetContext(ctx).SetBody(body), http.MethodPost, "/chat", &out)
	return &out, err
}

// Chat 获取会话详情
func (c *Client) Chat(ctx context.Context, chatID string) (*appChat.ChatDTO, error) {
	var out appChat.ChatDTO
	err := c.do(c.http.R().SetContext(ctx), http.MethodGet, "/chat/"+url.PathEscape(chatID), &out)
	return &out, err
}

// Rename 重命名会话
func (c *Client) Rename(ctx context.Context, chatID, title string) (*handler.RenameResponse, error) {
	var out handler.RenameResponse
	req := c.http.R().SetContext(ctx).SetBody(&handler.RenameRequest{NewTitle: title})
	err := c.do(req, http.MethodPatch, "/chat/"+url.PathEscape(chatID), &out)
	return &out, err
}

// Delete 删除会话
func (c *Client) Delete(ctx context.Context, chatID string) (*handler.DeleteResponse, error) {
	var out handler.DeleteResponse
	err := c.do(c.http.R().SetContext(ctx), http.MethodDelete, "/chat/"+url.PathEscape(chatID), &out)
	return &out, err
}

// Graph 获取知识图谱
func (c *Client) Graph(ctx context.Context, userID string) (*domainGraph.Graph, error) {
	var out domainGraph.Graph
	err := c.do(c.http.R().SetContext(ctx), http.MethodGet, "/graph/"+url.PathEscape(userID), &out)
	return &out, err
}

func (c *Client) do(req *resty.Request, method, path string, out any) error {
	var errBody response.ErrorResponse
	resp, err := req.SetResult(out).SetError(&errBody).Execute(method, path)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	if resp.IsError() {
		return toAPIError(resp.StatusCode(), errBody.Detail, resp.Status())
	}
	return nil
}

// toAPIError 解析 {detail} 错误体，detail 可能是字符串或 {error, message}
func toAPIError(status int, detail any, fallback string) *APIError {
	e := &APIError{StatusCode: status, Message: fallback}
	switch d := detail.(type) {
	case string:
		e.Message = d
	case map[string]any:
		if msg, ok := d["message"].(string); ok {
			e.Message = msg
		}
		if code, ok := d["error"].(string); ok {
			e.Code = code
		}
	}
	return e
}
