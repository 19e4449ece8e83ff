package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	// maxBatchSize 单次请求的最大文本数
	maxBatchSize = 256
	// maxParallelBatches 并发请求的批次数
	maxParallelBatches = 4
	// maxRetriesPerBatch 每个批次的最大尝试次数
	maxRetriesPerBatch = 3
)

// Client OpenAI 兼容的 Embedding API 客户端
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewClient 创建 Embedding 客户端
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     log.NewModuleLogger("embedding", "client"),
		retryDelay: time.Second,
	}
}

// buildEmbeddingURL 构建 Embedding API URL
// 支持传入根地址、/v1 或完整的 /v1/embeddings
func buildEmbeddingURL(baseURL string) string {
	switch {
	case strings.Contains(baseURL, "/embeddings"):
		return baseURL
	case strings.HasSuffix(baseURL, "/v1"):
		return baseURL + "/embeddings"
	default:
		return baseURL + "/v1/embeddings"
	}
}

// EmbeddingRequest Embedding 请求
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingResponse Embedding 响应
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed 批量向量化文本，返回顺序与输入一致
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	vectors := make([][]float32, len(texts))
	totalBatches := (len(texts) + maxBatchSize - 1) / maxBatchSize

	p := pool.New().WithContext(ctx).WithMaxGoroutines(maxParallelBatches).WithCancelOnError()
	for i := 0; i < len(texts); i += maxBatchSize {
		start := i
		end := min(i+maxBatchSize, len(texts))
		p.Go(func(ctx context.Context) error {
			batch, err := c.embedWithRetry(ctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("failed to embed batch %d/%d: %w", start/maxBatchSize+1, totalBatches, err)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		c.logger.Error("Failed to embed texts", "texts", len(texts), "error", err)
		return nil, err
	}

	c.logger.Debug("Embedded texts", "texts", len(texts), "batches", totalBatches)
	return vectors, nil
}

// embedWithRetry 带重试的单批次请求，延迟随次数递增
func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetriesPerBatch; attempt++ {
		vectors, retryable, err := c.embedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !retryable || attempt == maxRetriesPerBatch {
			break
		}

		c.logger.Warn("Embedding request failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetriesPerBatch,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}
	return nil, lastErr
}

// embedBatch 发送单次请求，第二个返回值表示错误是否可重试
func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, bool, error) {
	jsonData, err := json.Marshal(EmbeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := buildEmbeddingURL(c.baseURL)
	c.logger.Debug("Sending embedding request",
		"url", url,
		"batch_size", len(texts),
		"model", c.model,
		"api_key", maskKey(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embeddingResp.Data) != len(texts) {
		return nil, false, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingResp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range embeddingResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, false, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, false, nil
}

// maskKey API Key 脱敏
func maskKey(key string) string {
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "***"
}
