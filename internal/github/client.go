package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/teemow/gh-notifications-cleanup/internal/instrumentation"
)

// PageSize is the number of notifications requested per page.
const PageSize = 100

// StateClosed is the subject state of a closed pull request or issue.
const StateClosed = "closed"

// Subject types that can be classified.
const (
	SubjectPullRequest = "PullRequest"
	SubjectIssue       = "Issue"
)

// ListOptions narrows the notifications listing.
type ListOptions struct {
	// Since only returns notifications updated after this time. Zero means unset.
	Since time.Time
	// All includes notifications already marked as read.
	All bool
}

// Client talks to the GitHub REST API on behalf of a single token.
type Client struct {
	client  *github.Client
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records API operation metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client authenticated with token. apiURL overrides the
// REST API base URL when non-empty.
func NewClient(token, apiURL string, opts ...Option) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
		}
		gh.BaseURL = base
	}

	c := &Client{client: gh}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListNotifications returns every notification thread visible to the token,
// following pagination until the last page. Any failed page fails the call.
func (c *Client) ListNotifications(ctx context.Context, opts ListOptions) ([]*github.Notification, error) {
	ctx, span := instrumentation.StartGitHubAPISpan(ctx, instrumentation.OperationListNotifications)
	start := time.Now()

	listOpts := &github.NotificationListOptions{
		All:         opts.All,
		Since:       opts.Since,
		ListOptions: github.ListOptions{PerPage: PageSize},
	}

	var all []*github.Notification
	var err error
	for {
		var page []*github.Notification
		var resp *github.Response
		page, resp, err = c.client.Activity.ListNotifications(ctx, listOpts)
		if err != nil {
			err = annotate(err)
			break
		}
		all = append(all, page...)
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	c.metrics.RecordGitHubAPIOperation(ctx, instrumentation.OperationListNotifications, instrumentation.StatusFromError(err), time.Since(start))
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrItemCount, len(all)))
	instrumentation.EndSpan(span, err)

	if err != nil {
		return nil, err
	}
	return all, nil
}

// SubjectState fetches the subject resource at subjectURL (an absolute API URL
// of a pull request or issue) and returns its state, e.g. "open" or "closed".
func (c *Client) SubjectState(ctx context.Context, subjectURL string) (string, error) {
	ctx, span := instrumentation.StartGitHubAPISpan(ctx, instrumentation.OperationGetSubject)
	start := time.Now()

	state, err := c.subjectState(ctx, subjectURL)

	c.metrics.RecordGitHubAPIOperation(ctx, instrumentation.OperationGetSubject, instrumentation.StatusFromError(err), time.Since(start))
	instrumentation.EndSpan(span, err)
	return state, err
}

func (c *Client) subjectState(ctx context.Context, subjectURL string) (string, error) {
	if subjectURL == "" {
		return "", errors.New("subject has no URL")
	}

	req, err := c.client.NewRequest(http.MethodGet, subjectURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", subjectURL, err)
	}

	var subject struct {
		State string `json:"state"`
	}
	if _, err := c.client.Do(ctx, req, &subject); err != nil {
		return "", annotate(err)
	}
	return subject.State, nil
}

// MarkThreadDone marks the notification thread with the given id as done,
// removing it from the inbox.
func (c *Client) MarkThreadDone(ctx context.Context, threadID string) error {
	ctx, span := instrumentation.StartGitHubAPISpan(ctx, instrumentation.OperationMarkThreadDone,
		attribute.String(instrumentation.SpanAttrNotificationID, threadID))
	start := time.Now()

	err := c.markThreadDone(ctx, threadID)

	c.metrics.RecordGitHubAPIOperation(ctx, instrumentation.OperationMarkThreadDone, instrumentation.StatusFromError(err), time.Since(start))
	instrumentation.EndSpan(span, err)
	return err
}

func (c *Client) markThreadDone(ctx context.Context, threadID string) error {
	id, err := strconv.ParseInt(threadID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid thread id %q: %w", threadID, err)
	}
	if _, err := c.client.Activity.MarkThreadDone(ctx, id); err != nil {
		return annotate(err)
	}
	return nil
}

// annotate adds the reset time to rate limit errors.
func annotate(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("rate limit exceeded, resets at %s: %w",
			rateErr.Rate.Reset.Time.Format(time.RFC3339), err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if retry := abuseErr.GetRetryAfter(); retry > 0 {
			return fmt.Errorf("secondary rate limit exceeded, retry after %s: %w", retry, err)
		}
		return fmt.Errorf("secondary rate limit exceeded: %w", err)
	}
	return err
}
