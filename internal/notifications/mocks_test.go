package notifications

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"

	ghclient "github.com/teemow/gh-notifications-cleanup/internal/github"
	"github.com/teemow/gh-notifications-cleanup/internal/logging"
)

type MockGitHub struct {
	mock.Mock
}

func (m *MockGitHub) ListNotifications(ctx context.Context, opts ghclient.ListOptions) ([]*github.Notification, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Notification), args.Error(1)
}

func (m *MockGitHub) SubjectState(ctx context.Context, subjectURL string) (string, error) {
	args := m.Called(ctx, subjectURL)
	return args.String(0), args.Error(1)
}

func (m *MockGitHub) MarkThreadDone(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

type logEntry struct {
	level string
	msg   string
	attrs map[string]string
}

// recordingLogger captures log entries for assertions.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	base    []any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, args []any) {
	attrs := map[string]string{}
	all := append(append([]any{}, l.base...), args...)
	for i := 0; i < len(all); i++ {
		switch v := all[i].(type) {
		case slog.Attr:
			attrs[v.Key] = v.Value.String()
		case string:
			if i+1 < len(all) {
				attrs[v] = slog.AnyValue(all[i+1]).String()
				i++
			}
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, attrs: attrs})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

func (l *recordingLogger) With(args ...any) logging.Logger {
	return &recordingLogger{mu: l.mu, entries: l.entries, base: append(append([]any{}, l.base...), args...)}
}

func (l *recordingLogger) warnings() []logEntry {
	return l.atLevel("WARN")
}

func (l *recordingLogger) atLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range *l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(*l.entries))
	for _, e := range *l.entries {
		out = append(out, e.msg)
	}
	return out
}

func notification(id, subjectType, title, url string) *github.Notification {
	return &github.Notification{
		ID: github.Ptr(id),
		Subject: &github.NotificationSubject{
			Title: github.Ptr(title),
			Type:  github.Ptr(subjectType),
			URL:   github.Ptr(url),
		},
		Repository: &github.Repository{FullName: github.Ptr("octo/repo")},
	}
}
