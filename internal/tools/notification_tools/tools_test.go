package notification_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	gogithub "github.com/google/go-github/v80/github"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghclient "github.com/teemow/gh-notifications-cleanup/internal/github"
	"github.com/teemow/gh-notifications-cleanup/internal/logging"
	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
	"github.com/teemow/gh-notifications-cleanup/internal/server"
	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
	"github.com/teemow/gh-notifications-cleanup/internal/ui"
)

// fakeGitHub serves a small inbox: 1 closed PR, 2 open issue, 3 closed issue, 4 release.
type fakeGitHub struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeGitHub) handler(srvURL *string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		base := *srvURL
		items := []map[string]any{
			{"id": "1", "subject": map[string]any{"title": "Closed PR", "type": "PullRequest", "url": base + "/repos/o/r/pulls/1"}},
			{"id": "2", "subject": map[string]any{"title": "Open issue", "type": "Issue", "url": base + "/repos/o/r/issues/2"}},
			{"id": "3", "subject": map[string]any{"title": "Closed issue", "type": "Issue", "url": base + "/repos/o/r/issues/3"}},
			{"id": "4", "subject": map[string]any{"title": "v1.0.0", "type": "Release", "url": base + "/repos/o/r/releases/4"}},
		}
		_ = json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("GET /repos/o/r/pulls/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"closed"}`)
	})
	mux.HandleFunc("GET /repos/o/r/issues/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"open"}`)
	})
	mux.HandleFunc("GET /repos/o/r/issues/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":"closed"}`)
	})
	mux.HandleFunc("DELETE /notifications/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeGitHub) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string{}, f.deleted...)
	sort.Strings(out)
	return out
}

func newTestServerContext(t *testing.T, yolo bool) (*server.ServerContext, *fakeGitHub) {
	t.Helper()
	fake := &fakeGitHub{}
	var srvURL string
	srv := httptest.NewServer(fake.handler(&srvURL))
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	client, err := ghclient.NewClient("test-token", srv.URL)
	require.NoError(t, err)

	logger := logging.NewSlogAdapter(logging.New(&strings.Builder{}, logging.Options{}))
	svc := notifications.NewService(client, notifications.WithLogger(logger))
	sc, err := server.NewServerContext(context.Background(), svc, server.WithYolo(yolo), server.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, fake
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestHandleListClosedNotifications(t *testing.T) {
	sc, fake := newTestServerContext(t, false)

	result, err := handleListClosedNotifications(context.Background(), callRequest(ListToolName, map[string]any{}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var doc ui.ListJSON
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &doc))
	assert.Equal(t, 4, doc.Total)
	assert.Equal(t, 2, doc.Eligible)
	require.Len(t, doc.Candidates, 2)
	assert.Equal(t, "1", doc.Candidates[0].ID)
	assert.Equal(t, notifications.ReasonPullRequestClosed, doc.Candidates[0].Reason)
	assert.Equal(t, "3", doc.Candidates[1].ID)
	assert.Empty(t, fake.deletedIDs(), "listing must not mark anything as done")
}

func TestHandleListClosedNotifications_InvalidSince(t *testing.T) {
	sc, _ := newTestServerContext(t, false)

	result, err := handleListClosedNotifications(context.Background(), callRequest(ListToolName, map[string]any{"since": "last week"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid since value")
}

func TestHandleCleanupNotifications_AllEligible(t *testing.T) {
	sc, fake := newTestServerContext(t, true)

	result, err := handleCleanupNotifications(context.Background(), callRequest(CleanupToolName, map[string]any{}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, []string{"1", "3"}, fake.deletedIDs())
}

func TestHandleCleanupNotifications_RestrictedToEligibleIDs(t *testing.T) {
	sc, fake := newTestServerContext(t, true)

	result, err := handleCleanupNotifications(context.Background(),
		callRequest(CleanupToolName, map[string]any{"ids": []any{"3", "2", "99"}}), sc)
	require.NoError(t, err)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 1, br.Successful)
	assert.Equal(t, 2, br.Failed)

	errorsByID := map[string]string{}
	for _, r := range br.Results {
		errorsByID[r.ID] = r.Error
	}
	assert.Equal(t, "", errorsByID["3"])
	assert.Equal(t, "not eligible for cleanup", errorsByID["2"])
	assert.Equal(t, "not eligible for cleanup", errorsByID["99"])
	assert.Equal(t, []string{"3"}, fake.deletedIDs())
}

func TestHandleCleanupNotifications_InvalidIDs(t *testing.T) {
	sc, fake := newTestServerContext(t, true)

	result, err := handleCleanupNotifications(context.Background(),
		callRequest(CleanupToolName, map[string]any{"ids": []any{}}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.deletedIDs())
}

func TestSelectCandidates(t *testing.T) {
	cands := []notifications.Candidate{
		{Notification: notificationWithID("1")},
		{Notification: notificationWithID("2")},
	}

	selected, rejected := selectCandidates(cands, nil)
	assert.Len(t, selected, 2)
	assert.Empty(t, rejected)

	selected, rejected = selectCandidates(cands, []string{"2", "2", "5"})
	require.Len(t, selected, 1)
	assert.Equal(t, "2", selected[0].ID())
	require.Len(t, rejected, 1)
	assert.Equal(t, "5", rejected[0].ID)
}

func TestRegisterNotificationTools(t *testing.T) {
	tests := []struct {
		name        string
		yolo        bool
		wantCleanup bool
	}{
		{name: "read-only", yolo: false, wantCleanup: false},
		{name: "yolo", yolo: true, wantCleanup: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, _ := newTestServerContext(t, tt.yolo)
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterNotificationTools(s, sc))

			names := map[string]bool{}
			for _, st := range s.ListTools() {
				names[st.Tool.Name] = true
			}
			assert.True(t, names[ListToolName])
			assert.Equal(t, tt.wantCleanup, names[CleanupToolName])
		})
	}
}

func notificationWithID(id string) *gogithub.Notification {
	return &gogithub.Notification{ID: gogithub.Ptr(id)}
}
