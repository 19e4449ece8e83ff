package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appChat "github.com/secondbrain/backend/internal/application/chat"
	appGraph "github.com/secondbrain/backend/internal/application/graph"
	"github.com/secondbrain/backend/internal/application/ingestion"
	appNotification "github.com/secondbrain/backend/internal/application/notification"
	appRAG "github.com/secondbrain/backend/internal/application/rag"
	domainNotification "github.com/secondbrain/backend/internal/domain/notification"
	"github.com/secondbrain/backend/internal/infrastructure/cache"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/embedding"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
	"github.com/secondbrain/backend/internal/infrastructure/llm"
	infraNotification "github.com/secondbrain/backend/internal/infrastructure/notification"
	"github.com/secondbrain/backend/internal/infrastructure/storage"
	"github.com/secondbrain/backend/internal/infrastructure/tokenizer"
	"github.com/secondbrain/backend/internal/infrastructure/vector"
	"github.com/secondbrain/backend/internal/infrastructure/watcher"
	"github.com/secondbrain/backend/internal/infrastructure/websocket"
	"github.com/secondbrain/backend/internal/interfaces/http/handler"
)

// fakeCompleter 记录最后一次提示并返回固定回答
type fakeCompleter struct {
	mu         sync.Mutex
	configured bool
	answer     string
	err        error
	last       []llm.Message
	calls      int
}

func (f *fakeCompleter) Configured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configured
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = msgs
	return f.answer, f.err
}

func (f *fakeCompleter) prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, m := range f.last {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// fakeFetcher 以 URL 为键返回预置页面
type fakeFetcher struct {
	pages  map[string]*extract.Page
	videos map[string]*extract.Page
}

func (f *fakeFetcher) FetchPage(_ context.Context, rawURL string) (*extract.Page, error) {
	if p, ok := f.pages[rawURL]; ok {
		return p, nil
	}
	return nil, &extract.FetchError{URL: rawURL, StatusCode: http.StatusNotFound}
}

func (f *fakeFetcher) FetchYouTube(_ context.Context, videoID string) (*extract.Page, error) {
	if p, ok := f.videos[videoID]; ok {
		return p, nil
	}
	return nil, &extract.FetchError{URL: videoID, StatusCode: http.StatusNotFound}
}

type testEnv struct {
	router    *gin.Engine
	completer *fakeCompleter
	fetcher   *fakeFetcher
}

func newTestEnv(t testing.TB, jwtSecret string, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}
	chats := storage.NewChatRepository(db)
	chunks := storage.NewChunkRepository(db)

	embedder := embedding.NewHashingEmbedder(128)
	store := vector.NewMemoryStore()
	indexer := appRAG.NewIndexer(embedder, store, chunks)
	retriever := appRAG.NewRetriever(embedder, store, &cfg.Vector)

	bus := watcher.NewEventBus()
	t.Cleanup(bus.Close)

	env := &testEnv{
		completer: &fakeCompleter{configured: true, answer: "It is about retrieval."},
		fetcher:   &fakeFetcher{pages: map[string]*extract.Page{}, videos: map[string]*extract.Page{}},
	}

	builder := appGraph.NewBuilder(chats, chunks, cache.NewMemoryCache(), &cfg.Redis)
	ingestSvc := ingestion.NewService(chats, extract.NewRegistry(), env.fetcher, indexer, bus, builder, &cfg.Ingestion)
	chatSvc := appChat.NewService(chats, env.completer, retriever, indexer, cache.NewMemoryLocker(),
		tokenizer.Approx{}, bus, builder, &cfg.LLM)

	hub := websocket.NewHub()
	notifySvc := appNotification.NewService(infraNotification.NewMemoryRepository(),
		domainNotification.NewService(), infraNotification.NewWebSocketPusher(hub))

	handlers := NewHandlers(
		handler.NewIngestionHandler(ingestSvc),
		handler.NewChatHandler(chatSvc),
		handler.NewGraphHandler(builder),
		handler.NewNotificationHandler(notifySvc, websocket.NewServer(hub, &cfg.WebSocket)),
	)
	auth := &config.AuthConfig{JWTSecret: jwtSecret}
	env.router = NewRouter(&cfg.Server, auth, handlers, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return env
}

func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(filename string, data []byte, userID string, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, _ := mw.CreateFormFile("file", filename)
		_, _ = fw.Write(data)
	}
	if userID != "" {
		_ = mw.WriteField("user_id", userID)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t testing.TB, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
