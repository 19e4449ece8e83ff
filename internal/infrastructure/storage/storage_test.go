package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/domain/chat"
	domainRAG "github.com/secondbrain/backend/internal/domain/rag"
	"github.com/secondbrain/backend/internal/domain/source"
)

// setupTestDB 创建临时测试数据库
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpenDB_SchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, InitSchema(db))
}

func TestChatRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	s := &chat.Session{
		ID:            "c1",
		UserID:        "u1",
		Title:         "report.pdf",
		SourceType:    source.TypePDF,
		SourceURL:     "report.pdf",
		SourceContent: "quarterly numbers",
	}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Title)
	assert.Equal(t, source.TypePDF, got.SourceType)
	assert.Equal(t, "quarterly numbers", got.SourceContent)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, chat.ErrChatNotFound)
}

func TestChatRepository_DefaultsToGeneral(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "g1", UserID: "u1", Title: "hello"}))

	got, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, source.TypeGeneral, got.SourceType)
	assert.False(t, got.HasSource())
}

func TestChatRepository_FindByUserOrdersByUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "old", UserID: "u1", Title: "old", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "new", UserID: "u1", Title: "new", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "other", UserID: "u2", Title: "other"}))

	list, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)

	// 追加消息后旧会话排到最前
	require.NoError(t, repo.AppendMessages(ctx, "old", &chat.Message{ID: "m1", Role: chat.RoleUser, Content: "hi"}))
	list, err = repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "old", list[0].ID)

	empty, err := repo.FindByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatRepository_MessagesKeepInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "c1", UserID: "u1", Title: "t"}))
	require.NoError(t, repo.AppendMessages(ctx, "c1",
		&chat.Message{ID: "m1", Role: chat.RoleUser, Content: "first"},
		&chat.Message{ID: "m2", Role: chat.RoleAI, Content: "second"},
	))
	require.NoError(t, repo.AppendMessages(ctx, "c1",
		&chat.Message{ID: "m3", Role: chat.RoleUser, Content: "third"},
	))

	msgs, err := repo.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	assert.Equal(t, chat.RoleAI, msgs[1].Role)

	err = repo.AppendMessages(ctx, "missing", &chat.Message{ID: "m4", Role: chat.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, chat.ErrChatNotFound)
}

func TestChatRepository_RenameAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	chunks := NewChunkRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Session{ID: "c1", UserID: "u1", Title: "t"}))
	require.NoError(t, repo.AppendMessages(ctx, "c1", &chat.Message{ID: "m1", Role: chat.RoleUser, Content: "q"}))
	require.NoError(t, chunks.SaveChunks(ctx, []*domainRAG.Chunk{{ID: "k1", ChatID: "c1", UserID: "u1", SourceType: "pdf", Content: "x"}}))

	require.NoError(t, repo.UpdateTitle(ctx, "c1", "Renamed"))
	got, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.ErrorIs(t, repo.UpdateTitle(ctx, "missing", "x"), chat.ErrChatNotFound)

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.FindByID(ctx, "c1")
	assert.ErrorIs(t, err, chat.ErrChatNotFound)

	msgs, err := repo.ListMessages(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	left, err := chunks.FindByChat(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, repo.Delete(ctx, "c1"), chat.ErrChatNotFound)
}

func TestChunkRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChunkRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveChunks(ctx, []*domainRAG.Chunk{
		{ID: "b", ChatID: "c1", UserID: "u1", SourceType: "web", Position: 1, Content: "second"},
		{ID: "a", ChatID: "c1", UserID: "u1", SourceType: "web", Position: 0, Content: "first"},
		{ID: "z", ChatID: "c2", UserID: "u1", SourceType: "web", Position: 0, Content: "other"},
	}))

	ids, err := repo.ChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)

	list, err := repo.FindByChat(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)

	require.NoError(t, repo.DeleteByChat(ctx, "c1"))
	list, err = repo.FindByChat(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = repo.FindByChat(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
