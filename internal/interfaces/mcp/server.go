package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// Version MCP 服务版本
const Version = "0.3.0"

// KnowledgeSearcher 跨会话检索知识片段
type KnowledgeSearcher interface {
	Search(ctx context.Context, userID, query string, limit int) ([]domainRAG.SearchHit, error)
}

// MCPServer MCP 服务器
type MCPServer struct {
	server   *mcp.Server
	handler  http.Handler
	chats    *appChat.Service
	sessions domainChat.Repository
	searcher KnowledgeSearcher
	logger   *slog.Logger
}

// NewServer 创建 MCP 服务器，未启用时返回 nil
func NewServer(
	cfg *config.MCPConfig,
	chats *appChat.Service,
	sessions domainChat.Repository,
	searcher KnowledgeSearcher,
) *MCPServer {
	if !cfg.Enabled {
		return nil
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "secondbrain",
			Version: Version,
		},
		nil,
	)

	s := &MCPServer{
		server:   server,
		chats:    chats,
		sessions: sessions,
		searcher: searcher,
		logger:   log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name: "list_chats",
		Description: `List the user's SecondBrain chats, newest first.
Parameters:
- user_id (string, optional): defaults to "default"

Returns: chats with id, title, source type, source url and bucket (video, document or web).`,
	}, s.listChatsTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_chat",
		Description: `Read one chat: its messages in order and the attached source metadata.
Parameters:
- chat_id (string, required)
- user_id (string, optional): when set, only that user's chats are found
- include_content (bool, optional): include the extracted source text, defaults to false`,
	}, s.getChatTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "ask_chat",
		Description: `Ask a question. The answer is grounded on the chat's source when it has one.
Parameters:
- query (string, required)
- chat_id (string, optional): continue an existing chat; omit to start a new one
- user_id (string, optional): defaults to "default"

Returns: the answer and the chat id to use for follow-ups.`,
	}, s.askChatTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_knowledge",
		Description: `Search across every source the user has ingested (documents, videos, web pages).

Use this tool when you need to:
- Find which of the user's sources mention a topic
- Quote passages from previously ingested material

Parameters:
- query (string, required): natural language description of what you're looking for
- user_id (string, optional): defaults to "default"
- limit (int, optional): 1-20, default 5

Returns: matching passages with chat id, source title and relevance.`,
	}, s.searchKnowledgeTool)

	// Streamable HTTP 会把请求的令牌信息带到工具调用中
	s.handler = mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return s
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// UserVerifier 校验 Bearer 令牌并返回其中的 user_id
type UserVerifier func(raw string) (string, error)

// GetAuthenticatedHandler 要求 Bearer 令牌，工具调用以令牌中的用户为准
func (s *MCPServer) GetAuthenticatedHandler(verify UserVerifier) http.Handler {
	verifier := func(_ context.Context, token string, _ *http.Request) (*auth.TokenInfo, error) {
		userID, err := verify(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
		}
		// 过期时间已由 verify 校验，这里只满足 RequireBearerToken 的非零要求
		return &auth.TokenInfo{UserID: userID, Expiration: time.Now().Add(time.Hour)}, nil
	}
	return auth.RequireBearerToken(verifier, nil)(s.handler)
}

// callerID 返回令牌中的用户，未鉴权时为空
func callerID(req *mcp.CallToolRequest) string {
	if req == nil || req.Extra == nil || req.Extra.TokenInfo == nil {
		return ""
	}
	return req.Extra.TokenInfo.UserID
}

// resolveUser 令牌中的用户优先，其次是工具参数，最后为 default
func resolveUser(req *mcp.CallToolRequest, requested string) string {
	if id := callerID(req); id != "" {
		return id
	}
	return userOrDefault(requested)
}
