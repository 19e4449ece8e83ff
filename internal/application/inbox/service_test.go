package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/application/ingestion"
	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/infrastructure/watcher"
)

type stubUploader struct {
	mu    sync.Mutex
	calls []*ingestion.UploadRequest
	err   error
}

func (u *stubUploader) Upload(_ context.Context, req *ingestion.UploadRequest) (*ingestion.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, req)
	if u.err != nil {
		return nil, u.err
	}
	return &ingestion.UploadResult{ChatID: "chat-1", Filename: req.Filename}, nil
}

func (u *stubUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

func writeInboxFile(t *testing.T, root, user, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, user)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestService_HandleEventIngestsAndArchives(t *testing.T) {
	root := t.TempDir()
	path := writeInboxFile(t, root, "alice", "notes.md", "# Notes")

	bus := watcher.NewEventBus()
	defer bus.Close()
	up := &stubUploader{}
	svc := NewService(up, bus)

	require.NoError(t, svc.HandleEvent(&events.InboxFileEvent{User: "alice", Path: path}))

	require.Len(t, up.calls, 1)
	assert.Equal(t, "alice", up.calls[0].UserID)
	assert.Equal(t, "notes.md", up.calls[0].Filename)
	assert.Equal(t, []byte("# Notes"), up.calls[0].Data)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(root, "alice", watcher.DoneDirName, "notes.md"))
}

func TestService_HandleEventSkipsUnsupportedAndMissing(t *testing.T) {
	root := t.TempDir()
	exe := writeInboxFile(t, root, "alice", "setup.exe", "MZ")

	bus := watcher.NewEventBus()
	defer bus.Close()
	up := &stubUploader{}
	svc := NewService(up, bus)

	require.NoError(t, svc.HandleEvent(&events.InboxFileEvent{User: "alice", Path: exe}))
	require.NoError(t, svc.HandleEvent(&events.InboxFileEvent{User: "alice", Path: filepath.Join(root, "alice", "gone.txt")}))

	assert.Zero(t, up.count())
	assert.FileExists(t, exe)
}

func TestService_HandleEventPublishesFailure(t *testing.T) {
	root := t.TempDir()
	path := writeInboxFile(t, root, "bob", "broken.pdf", "not a pdf")

	bus := watcher.NewEventBus()
	defer bus.Close()

	failed := make(chan *events.SourceEvent, 1)
	unsubscribe := bus.Subscribe(events.SourceIngestFailed, events.HandlerFunc(func(e events.Event) error {
		failed <- e.(*events.SourceEvent)
		return nil
	}))
	defer unsubscribe()

	svc := NewService(&stubUploader{err: errors.New("no text")}, bus)
	err := svc.HandleEvent(&events.InboxFileEvent{User: "bob", Path: path})
	require.Error(t, err)
	assert.FileExists(t, path)

	select {
	case ev := <-failed:
		assert.Equal(t, "bob", ev.User)
		assert.Equal(t, "broken.pdf", ev.Title)
		assert.Equal(t, "no text", ev.Err)
	case <-time.After(time.Second):
		t.Fatal("expected ingest failure event")
	}
}

func TestService_StartConsumesBusEvents(t *testing.T) {
	root := t.TempDir()
	first := writeInboxFile(t, root, "carol", "a.txt", "alpha")
	second := writeInboxFile(t, root, "carol", "b.txt", "beta")

	bus := watcher.NewEventBus()
	defer bus.Close()
	up := &stubUploader{}
	svc := NewService(up, bus)
	stop := svc.Start()

	bus.Publish(&events.InboxFileEvent{User: "carol", Path: first})
	bus.Publish(&events.InboxFileEvent{User: "carol", Path: second})

	assert.Eventually(t, func() bool { return up.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	stop()

	assert.FileExists(t, filepath.Join(root, "carol", watcher.DoneDirName, "a.txt"))
	assert.FileExists(t, filepath.Join(root, "carol", watcher.DoneDirName, "b.txt"))
}

func TestMoveToDone_AvoidsOverwrite(t *testing.T) {
	root := t.TempDir()
	path := writeInboxFile(t, root, "dave", "x.txt", "new")
	writeInboxFile(t, filepath.Join(root, "dave"), watcher.DoneDirName, "x.txt", "old")

	dest, err := moveToDone(path)
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Join(root, "dave", watcher.DoneDirName, "x.txt"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
