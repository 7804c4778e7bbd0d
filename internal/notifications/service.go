package notifications

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/go-github/v80/github"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	ghclient "github.com/teemow/gh-notifications-cleanup/internal/github"
	"github.com/teemow/gh-notifications-cleanup/internal/instrumentation"
	"github.com/teemow/gh-notifications-cleanup/internal/logging"
	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
)

// GitHub is the subset of the GitHub API the pipeline needs.
type GitHub interface {
	ListNotifications(ctx context.Context, opts ghclient.ListOptions) ([]*github.Notification, error)
	SubjectState(ctx context.Context, subjectURL string) (string, error)
	MarkThreadDone(ctx context.Context, threadID string) error
}

// Service lists and cleans up notifications.
type Service struct {
	gh          GitHub
	logger      logging.Logger
	metrics     *instrumentation.Metrics
	concurrency int
	progress    func(done, total int)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency bounds the number of mark-as-done requests in flight.
// Values below 1 fall back to batch.DefaultLimit.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// WithMetrics records classification and cleanup metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithProgress registers fn to be called after each notification is classified.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// NewService creates a Service backed by gh.
func NewService(gh GitHub, opts ...Option) *Service {
	s := &Service{
		gh:          gh,
		logger:      logging.DefaultLogger(),
		concurrency: batch.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = batch.DefaultLimit
	}
	return s
}

// Concurrency returns the cleanup concurrency limit.
func (s *Service) Concurrency() int {
	return s.concurrency
}

// List fetches every notification and returns those whose pull request or
// issue is closed. Subjects are looked up one at a time in inbox order. Only a
// failure to fetch the inbox is returned as an error.
func (s *Service) List(ctx context.Context, opts ListOptions) (result *ListResult, err error) {
	runID := uuid.NewString()
	logger := s.logger.With(logging.RunID(runID), logging.Operation("notifications.list"))

	ctx, span := instrumentation.StartSpan(ctx, "notifications.list",
		attribute.String(instrumentation.SpanAttrRunID, runID))
	defer func() { instrumentation.EndSpan(span, err) }()

	items, err := s.gh.ListNotifications(ctx, ghclient.ListOptions{Since: opts.Since, All: opts.All})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	result = &ListResult{Total: len(items)}
	if len(items) == 0 {
		logger.Debug("no notifications found")
		return result, nil
	}
	logger.Debug("found notifications", "count", len(items))

	for i, n := range items {
		if reason, ok := s.classify(ctx, logger, n); ok {
			result.Candidates = append(result.Candidates, Candidate{Notification: n, ReasonToDelete: reason})
		}
		if s.progress != nil {
			s.progress(i+1, len(items))
		}
	}

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrItemCount, len(result.Candidates)))
	logger.Debug("classification finished", "total", result.Total, "eligible", len(result.Candidates))
	return result, nil
}

// classify returns the cleanup reason for n, or false when n must be kept.
func (s *Service) classify(ctx context.Context, logger logging.Logger, n *github.Notification) (string, bool) {
	subject := n.GetSubject()
	subjectType := subject.GetType()

	var reason, failure string
	switch subjectType {
	case ghclient.SubjectPullRequest:
		reason, failure = ReasonPullRequestClosed, "failed to load pull request"
	case ghclient.SubjectIssue:
		reason, failure = ReasonIssueClosed, "failed to load issue"
	default:
		s.metrics.RecordClassification(ctx, subjectType, instrumentation.OutcomeSkipped)
		return "", false
	}
	if subject.GetURL() == "" {
		s.metrics.RecordClassification(ctx, subjectType, instrumentation.OutcomeSkipped)
		return "", false
	}

	state, err := s.gh.SubjectState(ctx, subject.GetURL())
	if err != nil {
		logger.Warn(failure,
			logging.NotificationID(n.GetID()),
			logging.SubjectType(subjectType),
			logging.Repository(n.GetRepository().GetFullName()),
			logging.Err(err))
		s.metrics.RecordClassification(ctx, subjectType, instrumentation.OutcomeError)
		return "", false
	}
	if state != ghclient.StateClosed {
		s.metrics.RecordClassification(ctx, subjectType, instrumentation.OutcomeOpen)
		return "", false
	}

	s.metrics.RecordClassification(ctx, subjectType, instrumentation.OutcomeEligible)
	return reason, true
}

// Cleanup marks every candidate as done with at most Concurrency requests in
// flight. A confirmation line is written to w for each success. Failures are
// logged and reported in the returned results, which follow input order.
func (s *Service) Cleanup(ctx context.Context, candidates []Candidate, w io.Writer) []batch.Result {
	if w == nil {
		w = io.Discard
	}

	runID := uuid.NewString()
	logger := s.logger.With(logging.RunID(runID), logging.Operation("notifications.cleanup"))

	ctx, span := instrumentation.StartSpan(ctx, "notifications.cleanup",
		attribute.String(instrumentation.SpanAttrRunID, runID),
		attribute.Int(instrumentation.SpanAttrItemCount, len(candidates)))
	defer span.End()

	ids := make([]string, len(candidates))
	byID := make(map[string]Candidate, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID()
		byID[c.ID()] = c
	}

	var mu sync.Mutex
	results := batch.Process(ctx, ids, s.concurrency, func(ctx context.Context, id string) (string, error) {
		if err := s.gh.MarkThreadDone(ctx, id); err != nil {
			logger.Warn("failed to unsubscribe from notification", logging.NotificationID(id), logging.Err(err))
			s.metrics.RecordCleanup(ctx, instrumentation.StatusError)
			return "", err
		}
		s.metrics.RecordCleanup(ctx, instrumentation.StatusSuccess)

		msg := fmt.Sprintf("Marking %s as DONE", byID[id].Title())
		mu.Lock()
		fmt.Fprintln(w, msg)
		mu.Unlock()
		return msg, nil
	})

	summary := batch.Summarize(results)
	logger.Debug("cleanup finished", "successful", summary.Successful, "failed", summary.Failed)
	instrumentation.SetSpanSuccess(span)
	return results
}
