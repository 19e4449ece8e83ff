package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	domainChat "github.com/secondbrain/backend/internal/domain/chat"
)

// ListChatsInput list_chats 输入
type ListChatsInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User id, defaults to default"`
}

// ChatSummary 会话摘要
type ChatSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
	SourceURL  string `json:"source_url,omitempty"`
	Bucket     string `json:"bucket"`
	UpdatedAt  string `json:"updated_at"`
}

// ListChatsOutput list_chats 输出
type ListChatsOutput struct {
	Chats []ChatSummary `json:"chats"`
	Total int           `json:"total"`
}

func (s *MCPServer) listChatsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListChatsInput,
) (*mcp.CallToolResult, ListChatsOutput, error) {
	output := ListChatsOutput{Chats: []ChatSummary{}}

	history, err := s.chats.History(ctx, resolveUser(req, input.UserID))
	if err != nil {
		return nil, output, fmt.Errorf("failed to list chats: %w", err)
	}
	for _, item := range history.Chats {
		output.Chats = append(output.Chats, ChatSummary{
			ID:         item.ID,
			Title:      item.Title,
			SourceType: item.SourceType,
			SourceURL:  item.SourceURL,
			Bucket:     string(item.Bucket),
			UpdatedAt:  item.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	output.Total = len(output.Chats)
	return nil, output, nil
}

// GetChatInput get_chat 输入
type GetChatInput struct {
	ChatID         string `json:"chat_id" jsonschema:"Chat id (required)"`
	UserID         string `json:"user_id,omitempty" jsonschema:"Owner of the chat; when set, chats of other users are not found"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"Include the extracted source text"`
}

// GetChatOutput get_chat 输出
type GetChatOutput struct {
	Title      string               `json:"title"`
	SourceType string               `json:"source_type"`
	SourceURL  string               `json:"source_url,omitempty"`
	Content    string               `json:"content,omitempty"`
	Messages   []appChat.MessageDTO `json:"messages"`
}

func (s *MCPServer) getChatTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetChatInput,
) (*mcp.CallToolResult, GetChatOutput, error) {
	output := GetChatOutput{Messages: []appChat.MessageDTO{}}
	if strings.TrimSpace(input.ChatID) == "" {
		return nil, output, fmt.Errorf("chat_id is required")
	}

	detail, err := s.chats.Get(ctx, input.ChatID, chatOwner(req, input.UserID))
	if err != nil {
		return nil, output, err
	}

	output.Title = detail.Metadata.Title
	output.SourceType = detail.Metadata.SourceType
	output.SourceURL = detail.Metadata.SourceURL
	if input.IncludeContent {
		output.Content = detail.Metadata.Content
	}
	output.Messages = append(output.Messages, detail.Messages...)
	return nil, output, nil
}

// AskChatInput ask_chat 输入
type AskChatInput struct {
	Query  string `json:"query" jsonschema:"Question to ask (required)"`
	ChatID string `json:"chat_id,omitempty" jsonschema:"Existing chat id, omit to start a new chat"`
	UserID string `json:"user_id,omitempty" jsonschema:"User id, defaults to default"`
}

// AskChatOutput ask_chat 输出
type AskChatOutput struct {
	Answer string `json:"answer"`
	ChatID string `json:"chat_id"`
}

func (s *MCPServer) askChatTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AskChatInput,
) (*mcp.CallToolResult, AskChatOutput, error) {
	res, err := s.chats.Ask(ctx, &appChat.AskRequest{
		Query:  input.Query,
		ChatID: input.ChatID,
		UserID: resolveUser(req, input.UserID),
		Owner:  chatOwner(req, input.UserID),
	})
	if err != nil {
		return nil, AskChatOutput{}, err
	}
	return nil, AskChatOutput{Answer: res.Answer, ChatID: res.ChatID}, nil
}

// chatOwner 访问已有会话时校验的归属用户，为空表示不校验
func chatOwner(req *mcp.CallToolRequest, requested string) string {
	if id := callerID(req); id != "" {
		return id
	}
	return strings.TrimSpace(requested)
}

func userOrDefault(userID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return domainChat.DefaultUserID
}
