package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
)

// SearchKnowledgeInput search_knowledge 输入
type SearchKnowledgeInput struct {
	Query  string `json:"query" jsonschema:"Search query in natural language (required)"`
	UserID string `json:"user_id,omitempty" jsonschema:"User id, defaults to default"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of passages, defaults to 5, max 20"`
}

// KnowledgeResult 检索结果（精简版）
type KnowledgeResult struct {
	ChatID     string `json:"chat_id"`
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
	Passage    string `json:"passage"`
	Relevance  string `json:"relevance" jsonschema:"Relevance level: high/medium/low"`
}

// SearchKnowledgeOutput search_knowledge 输出
type SearchKnowledgeOutput struct {
	Results    []KnowledgeResult `json:"results"`
	TotalCount int               `json:"total_count"`
}

func (s *MCPServer) searchKnowledgeTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchKnowledgeInput,
) (*mcp.CallToolResult, SearchKnowledgeOutput, error) {
	output := SearchKnowledgeOutput{Results: []KnowledgeResult{}}

	if strings.TrimSpace(input.Query) == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	hits, err := s.searcher.Search(ctx, resolveUser(req, input.UserID), input.Query, limit)
	if err != nil {
		return nil, output, fmt.Errorf("search failed: %w", err)
	}

	// 同一会话的多个片段只查一次标题
	titles := make(map[string]*domainChat.Session)
	for _, h := range hits {
		session, ok := titles[h.ChatID]
		if !ok {
			session, err = s.sessions.FindByID(ctx, h.ChatID)
			if errors.Is(err, domainChat.ErrChatNotFound) {
				titles[h.ChatID] = nil
				continue
			}
			if err != nil {
				return nil, output, err
			}
			titles[h.ChatID] = session
		}
		if session == nil {
			continue
		}

		output.Results = append(output.Results, KnowledgeResult{
			ChatID:     h.ChatID,
			Title:      session.Title,
			SourceType: session.SourceType.String(),
			Passage:    truncatePassage(h.Content, 500),
			Relevance:  scoreToRelevance(h.Score),
		})
	}
	output.TotalCount = len(output.Results)

	s.logger.Debug("Knowledge search", "query", input.Query, "results", output.TotalCount)
	return nil, output, nil
}

// truncatePassage 截断片段到指定长度
func truncatePassage(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	return string([]rune(text)[:maxLen]) + "..."
}

// scoreToRelevance 将余弦分数转换为相关性等级
func scoreToRelevance(score float32) string {
	switch {
	case score >= 0.75:
		return "high"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}
