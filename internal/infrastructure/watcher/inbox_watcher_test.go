package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/domain/events"
)

type recorder struct {
	mu     sync.Mutex
	events []*events.InboxFileEvent
}

func (r *recorder) HandleEvent(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(*events.InboxFileEvent))
	return nil
}

func (r *recorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Path)
	}
	return out
}

func startWatcher(t *testing.T, root string) (*InboxWatcher, *recorder) {
	t.Helper()
	bus := NewEventBus()
	rec := &recorder{}
	bus.Subscribe(events.InboxFileReady, rec)

	iw, err := NewInboxWatcher(InboxConfig{Root: root, DebounceDelay: 50 * time.Millisecond}, bus)
	require.NoError(t, err)
	require.NoError(t, iw.Start())
	t.Cleanup(func() {
		iw.Stop()
		bus.Close()
	})
	return iw, rec
}

func TestInboxWatcher_ExistingFiles(t *testing.T) {
	root := t.TempDir()
	userDir := filepath.Join(root, "alice")
	require.NoError(t, os.MkdirAll(filepath.Join(userDir, DoneDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "notes.md"), []byte("# hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

	_, rec := startWatcher(t, root)

	assert.Eventually(t, func() bool { return len(rec.paths()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, filepath.Join(userDir, "notes.md"), rec.paths()[0])
	rec.mu.Lock()
	assert.Equal(t, "alice", rec.events[0].UserID())
	rec.mu.Unlock()
}

func TestInboxWatcher_NewUserAndFile(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root)

	userDir := filepath.Join(root, "bob")
	require.NoError(t, os.Mkdir(userDir, 0o755))
	// 等待新目录被加入监听
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(userDir, "report.csv")
	require.NoError(t, os.WriteFile(target, []byte("a,b\n"), 0o644))
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("1,2\n")
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return len(rec.paths()) >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{target}, rec.paths())
}

func TestInboxWatcher_StopIsIdempotent(t *testing.T) {
	iw, _ := startWatcher(t, t.TempDir())
	iw.Stop()
	iw.Stop()
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".done"))
	assert.True(t, isHidden("~$report.docx"))
	assert.False(t, isHidden("report.docx"))
}
