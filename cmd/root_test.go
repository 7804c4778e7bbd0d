package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gh-notifications-cleanup/internal/config"
)

// fakeGitHub serves an inbox with a closed PR (1), an open issue (2), a
// closed issue (3) and a release (4). With allOpen set every PR and issue
// reports as open.
type fakeGitHub struct {
	mu        sync.Mutex
	deleted   []string
	failInbox bool
	allOpen   bool
}

func (f *fakeGitHub) state(closed bool) string {
	if closed && !f.allOpen {
		return `{"state":"closed"}`
	}
	return `{"state":"open"}`
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()
	fake := &fakeGitHub{}
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		if fake.failInbox {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		items := []map[string]any{
			{"id": "1", "subject": map[string]any{"title": "Closed PR", "type": "PullRequest", "url": srv.URL + "/repos/o/r/pulls/1"}},
			{"id": "2", "subject": map[string]any{"title": "Open issue", "type": "Issue", "url": srv.URL + "/repos/o/r/issues/2"}},
			{"id": "3", "subject": map[string]any{"title": "Closed issue", "type": "Issue", "url": srv.URL + "/repos/o/r/issues/3"}},
			{"id": "4", "subject": map[string]any{"title": "v1.0.0", "type": "Release", "url": srv.URL + "/repos/o/r/releases/4"}},
		}
		_ = json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("GET /repos/o/r/pulls/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fake.state(true))
	})
	mux.HandleFunc("GET /repos/o/r/issues/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fake.state(false))
	})
	mux.HandleFunc("GET /repos/o/r/issues/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fake.state(true))
	})
	mux.HandleFunc("DELETE /notifications/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.deleted = append(fake.deleted, r.PathValue("id"))
		fake.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.TokenEnv, "test-token")
	t.Setenv(config.EnvPrefix+"_API_URL", srv.URL)
	return fake, srv
}

func (f *fakeGitHub) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string{}, f.deleted...)
	sort.Strings(out)
	return out
}

func execute(args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestRun_DefaultsToList(t *testing.T) {
	fake, _ := newFakeGitHub(t)

	stdout, _, code := execute()

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Found 4 notifications:")
	assert.Contains(t, stdout, "Can be deleted (closed PRs/Issues): 2")
	assert.Empty(t, fake.deletedIDs())
}

func TestRun_MissingToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.TokenEnv, "")
	t.Setenv(config.EnvPrefix+"_TOKEN", "")

	stdout, stderr, code := execute("list")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, config.MissingTokenHint+"\n", stderr)
}

func TestRun_InboxFailure(t *testing.T) {
	fake, _ := newFakeGitHub(t)
	fake.failInbox = true

	_, stderr, code := execute("list")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Failed to read notifications: ")
	assert.Contains(t, stderr, "Bad credentials")
}

func TestRun_Version(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	stdout, _, code := execute("version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "gh-notifications-cleanup version 1.2.3\n", stdout)

	stdout, _, code = execute("--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "gh-notifications-cleanup version 1.2.3\n", stdout)
}

func TestRun_InvalidLogFormat(t *testing.T) {
	newFakeGitHub(t)

	_, stderr, code := execute("list", "--log-format", "xml")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `Error: invalid log format "xml"`)
}

func TestRun_DebugLogsGoToStderr(t *testing.T) {
	newFakeGitHub(t)

	stdout, stderr, code := execute("list", "--debug", "--log-format", "json")

	require.Equal(t, 0, code)
	assert.NotContains(t, stdout, `"level"`)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
	assert.Contains(t, stderr, `"run_id"`)
	assert.NotContains(t, stderr, "test-token")
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing token",
			err:  fmt.Errorf("loading: %w", config.ErrMissingToken),
			want: config.MissingTokenHint + "\n",
		},
		{
			name: "inbox failure",
			err:  &readError{err: fmt.Errorf("failed to list notifications: %w", errors.New("boom"))},
			want: "Failed to read notifications: boom\n",
		},
		{
			name: "unwrapped inbox failure",
			err:  &readError{err: errors.New("boom")},
			want: "Failed to read notifications: boom\n",
		},
		{
			name: "other",
			err:  errors.New("something else"),
			want: "Error: something else\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestIsTerminalWriter(t *testing.T) {
	assert.False(t, isTerminalWriter(&bytes.Buffer{}))
	assert.False(t, isTerminalWriter(io.Discard))
}

func TestRun_DebugLogsProgressAndCappedConcurrency(t *testing.T) {
	newFakeGitHub(t)
	t.Setenv(config.EnvPrefix+"_CONCURRENCY", "50")

	_, stderr, code := execute("list", "--debug")

	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "concurrency=10")
	assert.Contains(t, stderr, "classified notification")
	assert.Contains(t, stderr, "done=4 total=4")
}
