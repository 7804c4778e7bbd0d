package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
)

// Reasons a notification can be cleaned up.
const (
	ReasonPullRequestClosed = "Pull Request is closed"
	ReasonIssueClosed       = "Issue is closed"
)

// Candidate is a notification that is safe to mark as done.
type Candidate struct {
	Notification   *github.Notification
	ReasonToDelete string
}

// ID returns the notification thread id.
func (c Candidate) ID() string {
	return c.Notification.GetID()
}

// Title returns the subject title, or the thread id when the title is empty.
func (c Candidate) Title() string {
	if title := c.Notification.GetSubject().GetTitle(); title != "" {
		return title
	}
	return c.ID()
}

// SubjectType returns the subject type, e.g. "PullRequest".
func (c Candidate) SubjectType() string {
	return c.Notification.GetSubject().GetType()
}

// Repository returns the full name of the notification's repository.
func (c Candidate) Repository() string {
	return c.Notification.GetRepository().GetFullName()
}

// UpdatedAt returns when the notification was last updated.
func (c Candidate) UpdatedAt() time.Time {
	return c.Notification.GetUpdatedAt().Time
}

// ListOptions narrows which notifications are fetched.
type ListOptions struct {
	// Since only considers notifications updated after this time. Zero means unset.
	Since time.Time
	// All includes notifications already marked as read.
	All bool
}

// ListResult is the outcome of classifying the inbox.
type ListResult struct {
	// Total is the number of notifications fetched.
	Total int
	// Candidates are the notifications whose subject is closed, in inbox order.
	Candidates []Candidate
}

// sinceLayouts are the ISO 8601 forms accepted for --since. Layouts without
// an offset are read as UTC.
var sinceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseSince parses a --since value. It accepts ISO 8601 dates and
// timestamps with or without an offset. An empty value yields the zero time.
func ParseSince(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid since value %q: expected an ISO 8601 date (2006-01-02) or timestamp (2006-01-02T15:04:05, optionally with Z or an offset)", value)
}
