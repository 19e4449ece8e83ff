package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/domain/graph"
	"github.com/secondbrain/backend/internal/infrastructure/discovery"
)

func runCommand(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--server", serverURL}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHistoryCommand_GroupsBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history/alice", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"chats": []map[string]any{
			{"id": "c1", "title": "Talk", "source_type": "youtube", "bucket": "video", "updated_at": "2026-01-02T10:00:00Z"},
			{"id": "c2", "title": "Paper.pdf", "source_type": "pdf", "bucket": "document", "updated_at": "2026-01-01T10:00:00Z"},
			{"id": "c3", "title": "Blog", "source_type": "web", "updated_at": "2026-01-01T09:00:00Z"},
		}})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "history", "--user", "alice")
	require.NoError(t, err)

	videos := strings.Index(out, "Videos")
	docs := strings.Index(out, "Documents")
	web := strings.Index(out, "Web")
	assert.True(t, videos >= 0 && videos < docs && docs < web, out)
	assert.Contains(t, out, "Paper.pdf")
	// 缺少 bucket 字段时按 source_type 推断
	assert.True(t, strings.Index(out, "Blog") > web, out)
}

func TestAskCommand_ChatFlag(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, map[string]string{"answer": "forty two", "chat_id": "c9"})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "ask", "what", "is", "it")
	require.NoError(t, err)
	assert.Contains(t, out, "forty two")
	assert.Contains(t, out, "c9")

	_, err = runCommand(t, srv.URL, "ask", "--chat", "c9", "and", "then?")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, "what is it", bodies[0]["query"])
	assert.Nil(t, bodies[0]["chat_id"])
	assert.Equal(t, "default", bodies[0]["user_id"])
	assert.Equal(t, "c9", bodies[1]["chat_id"])
}

func TestUploadCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bob", r.FormValue("user_id"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.md", hdr.Filename)
		assert.Equal(t, "# hello", string(data))
		writeJSON(w, http.StatusOK, map[string]any{"chat_id": "u1", "filename": "notes.md", "type": "text", "content": "# hello"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# hello"), 0o644))

	out, err := runCommand(t, srv.URL, "-u", "bob", "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "u1")

	_, err = runCommand(t, srv.URL, "upload", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestRenameAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, map[string]string{"status": "renamed", "chat_id": "c1", "title": body["new_title"]})
		case http.MethodDelete:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
		}
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "rename", "c1", "New", "title")
	require.NoError(t, err)
	assert.Contains(t, out, "New title")

	_, err = runCommand(t, srv.URL, "delete", "c1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Chat not found", apiErr.Message)
}

func TestClient_StructuredErrorAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"detail": map[string]string{"error": "llm_unavailable", "message": "LLM is not configured"},
		})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "--token", "secret", "ask", "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "llm_unavailable", apiErr.Code)
	assert.Equal(t, "LLM is not configured", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "503")
}

func TestToAPIError(t *testing.T) {
	e := toAPIError(500, nil, "500 Internal Server Error")
	assert.Equal(t, "500 Internal Server Error", e.Message)

	e = toAPIError(400, []any{"odd"}, "400 Bad Request")
	assert.Equal(t, "400 Bad Request", e.Message)
	assert.Empty(t, e.Code)
}

func TestRenderGraph(t *testing.T) {
	var buf bytes.Buffer
	renderGraph(&buf, &graph.Graph{
		Nodes: []graph.Node{
			{ID: "s1", Name: "Paper", Type: graph.NodeSource, Val: 3},
			{ID: "kw:go", Name: "golang", Type: graph.NodeKeyword, Val: 1},
			{ID: "kw:rag", Name: "retrieval", Type: graph.NodeKeyword, Val: 2},
		},
		Links: []graph.Link{{Source: "s1", Target: "kw:go"}, {Source: "s1", Target: "kw:rag"}},
	})
	out := buf.String()
	assert.Contains(t, out, "Paper")
	assert.Less(t, strings.Index(out, "retrieval(2)"), strings.Index(out, "golang(1)"))
}

func TestRenderInstances(t *testing.T) {
	var buf bytes.Buffer
	renderInstances(&buf, nil)
	assert.Contains(t, buf.String(), "no SecondBrain instances found")

	buf.Reset()
	renderInstances(&buf, []discovery.Instance{{Name: "laptop", Endpoint: "http://10.0.0.2:8000"}})
	assert.Contains(t, buf.String(), "http://10.0.0.2:8000")
	assert.Contains(t, buf.String(), "vunknown")
}
