package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainChat "github.com/secondbrain/backend/internal/domain/chat"
	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/domain/source"
	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/extract"
	"github.com/secondbrain/backend/internal/infrastructure/storage"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPage(ctx context.Context, rawURL string) (*extract.Page, error) {
	args := m.Called(ctx, rawURL)
	page, _ := args.Get(0).(*extract.Page)
	return page, args.Error(1)
}

func (m *mockFetcher) FetchYouTube(ctx context.Context, videoID string) (*extract.Page, error) {
	args := m.Called(ctx, videoID)
	page, _ := args.Get(0).(*extract.Page)
	return page, args.Error(1)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Index(ctx context.Context, session *domainChat.Session, texts []string) (int, error) {
	args := m.Called(ctx, session, texts)
	return args.Int(0), args.Error(1)
}

func (m *mockIndexer) Delete(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.Handler) func() { return func() {} }

func (b *recordingBus) SubscribeMultiple([]events.EventType, events.Handler) func() {
	return func() {}
}

func (b *recordingBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Close() {}

type recordingGraphs struct {
	mu    sync.Mutex
	users []string
}

func (g *recordingGraphs) Invalidate(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users = append(g.users, userID)
	return nil
}

type fixture struct {
	svc     *Service
	chats   *storage.ChatRepository
	fetcher *mockFetcher
	indexer *mockIndexer
	bus     *recordingBus
	graphs  *recordingGraphs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default().Ingestion
	cfg.PreviewChars = 10

	f := &fixture{
		chats:   storage.NewChatRepository(db),
		fetcher: &mockFetcher{},
		indexer: &mockIndexer{},
		bus:     &recordingBus{},
		graphs:  &recordingGraphs{},
	}
	f.svc = NewService(f.chats, extract.NewRegistry(), f.fetcher, f.indexer, f.bus, f.graphs, &cfg)
	return f
}

func TestService_Upload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.indexer.On("Index", mock.Anything, mock.AnythingOfType("*chat.Session"), []string{"Quarterly revenue grew by twelve percent."}).
		Return(1, nil)

	res, err := f.svc.Upload(ctx, &UploadRequest{
		Filename: "../notes/report.txt",
		Data:     []byte("Quarterly revenue grew by twelve percent.\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "report.txt", res.Filename)
	assert.Equal(t, source.TypeText, res.Type)
	assert.Equal(t, "Quarterly ", res.Content)
	assert.Equal(t, 1, res.Chunks)

	session, err := f.chats.FindByID(ctx, res.ChatID)
	require.NoError(t, err)
	assert.Equal(t, domainChat.DefaultUserID, session.UserID)
	assert.Equal(t, "report.txt", session.Title)
	assert.Equal(t, "report.txt", session.SourceURL)
	assert.Equal(t, "Quarterly revenue grew by twelve percent.", session.SourceContent)

	require.Len(t, f.bus.events, 1)
	assert.Equal(t, events.SourceIngested, f.bus.events[0].Type())
	assert.Equal(t, []string{domainChat.DefaultUserID}, f.graphs.users)
	f.indexer.AssertExpectations(t)
}

func TestService_UploadRejectsUnsupported(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), &UploadRequest{Filename: "malware.exe", Data: []byte("x")})
	assert.ErrorIs(t, err, source.ErrUnsupportedFile)

	_, err = f.svc.Upload(context.Background(), &UploadRequest{Filename: "", Data: []byte("x")})
	assert.ErrorIs(t, err, source.ErrUnsupportedFile)
}

func TestService_UploadTooLarge(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.MaxUploadMB = 1

	_, err := f.svc.Upload(context.Background(), &UploadRequest{
		Filename: "big.txt",
		Data:     make([]byte, 1<<20+1),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestService_UploadEmptyFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), &UploadRequest{Filename: "blank.md", Data: []byte("  \n\n ")})
	assert.ErrorIs(t, err, extract.ErrNoText)
	f.indexer.AssertNotCalled(t, "Index", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UploadRollsBackOnIndexFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.indexer.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("vector store down"))
	f.indexer.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Upload(ctx, &UploadRequest{UserID: "alice", Filename: "a.txt", Data: []byte("hello there")})
	require.Error(t, err)

	sessions, err := f.chats.FindByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Empty(t, f.bus.events)
	f.indexer.AssertExpectations(t)
}

func TestService_ProcessLinkWeb(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fetcher.On("FetchPage", mock.Anything, "https://go.dev/blog").
		Return(&extract.Page{URL: "https://go.dev/blog", Title: "The Go Blog", Text: "Generics arrived in Go 1.18."}, nil)
	f.indexer.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)

	res, err := f.svc.ProcessLink(ctx, &LinkRequest{UserID: "bob", URL: " https://go.dev/blog ", Type: "youtube"})
	require.NoError(t, err)
	assert.Equal(t, source.TypeWeb, res.Type)
	assert.Equal(t, "The Go Blog", res.Detail.Title)
	assert.Equal(t, "https://go.dev/blog", res.Detail.URL)

	session, err := f.chats.FindByID(ctx, res.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "bob", session.UserID)
	assert.Equal(t, source.TypeWeb, session.SourceType)
	assert.Equal(t, "https://go.dev/blog", session.SourceURL)
}

func TestService_ProcessLinkYouTube(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fetcher.On("FetchYouTube", mock.Anything, "dQw4w9WgXcQ").
		Return(&extract.Page{Title: "Never Gonna Give You Up", Text: "never gonna give you up"}, nil)
	f.indexer.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)

	res, err := f.svc.ProcessLink(ctx, &LinkRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, source.TypeYouTube, res.Type)

	session, err := f.chats.FindByID(ctx, res.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", session.SourceURL)
	f.fetcher.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
}

func TestService_ProcessLinkErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcessLink(ctx, &LinkRequest{URL: "   "})
	assert.ErrorIs(t, err, source.ErrEmptyURL)

	fetchErr := &extract.FetchError{URL: "https://example.com/missing", StatusCode: 404}
	f.fetcher.On("FetchPage", mock.Anything, "https://example.com/missing").Return(nil, fetchErr)
	_, err = f.svc.ProcessLink(ctx, &LinkRequest{URL: "https://example.com/missing"})
	var fe *extract.FetchError
	assert.ErrorAs(t, err, &fe)

	f.fetcher.On("FetchPage", mock.Anything, "https://example.com/empty").
		Return(&extract.Page{Title: "Empty", Text: "  "}, nil)
	_, err = f.svc.ProcessLink(ctx, &LinkRequest{URL: "https://example.com/empty"})
	assert.ErrorIs(t, err, extract.ErrNoText)
	assert.EqualError(t, err, "no text could be extracted from https://example.com/empty")
}
