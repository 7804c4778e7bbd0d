package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/teemow/gh-notifications-cleanup/internal/notifications"
	"github.com/teemow/gh-notifications-cleanup/internal/tools/batch"
)

// Printer writes user facing output.
type Printer struct {
	out    io.Writer
	styles styles
	now    func() time.Time
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: newStyles(w),
		now:    time.Now,
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes formatted text.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Inbox prints how many notifications were fetched.
func (p *Printer) Inbox(total int) {
	if total == 0 {
		p.Println("No notifications found.")
		return
	}
	p.Printf("Found %d notifications:\n", total)
}

// Candidates prints the cleanable notifications followed by a summary.
func (p *Printer) Candidates(result *notifications.ListResult) {
	if len(result.Candidates) == 0 {
		p.Println("No closed PR/Issue notifications found that can be cleaned up.")
	} else {
		p.Println(p.styles.header.Render(fmt.Sprintf(
			"Found %d closed PR/Issue notification(s) that can be cleaned up:", len(result.Candidates))))
		for _, c := range result.Candidates {
			p.Println(p.FormatCandidate(c))
		}
	}
	p.Println()
	p.Printf("Total notifications: %d\n", result.Total)
	p.Printf("Can be deleted (closed PRs/Issues): %d\n", len(result.Candidates))
}

// FormatCandidate renders one candidate as "- <title> (<reason>)" followed by
// its repository and last update time when known.
func (p *Printer) FormatCandidate(c notifications.Candidate) string {
	line := fmt.Sprintf("- %s %s",
		p.styles.subject.Render(c.Title()),
		p.styles.reason.Render("("+c.ReasonToDelete+")"))

	if repo := c.Repository(); repo != "" {
		line += " in " + p.styles.repo.Render(repo)
	}
	if updated := c.UpdatedAt(); !updated.IsZero() {
		line += " " + p.styles.ts.Render(humanize.RelTime(updated, p.now(), "ago", "from now"))
	}
	return line
}

// CleanupSummary prints the outcome of a cleanup run.
func (p *Printer) CleanupSummary(results []batch.Result) {
	br := batch.Summarize(results)
	style := p.styles.success
	if br.Failed > 0 {
		style = p.styles.failure
	}
	p.Println(style.Render(fmt.Sprintf("Marked %d of %d notification(s) as done (%d failed).",
		br.Successful, br.Total, br.Failed)))
}

// CandidateJSON is the machine readable form of a candidate.
type CandidateJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	SubjectType string     `json:"subject_type"`
	Repository  string     `json:"repository,omitempty"`
	Reason      string     `json:"reason"`
	URL         string     `json:"url,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ListJSON is the machine readable form of a listing.
type ListJSON struct {
	Total      int             `json:"total"`
	Eligible   int             `json:"eligible"`
	Candidates []CandidateJSON `json:"candidates"`
}

// NewListJSON converts a list result for JSON output.
func NewListJSON(result *notifications.ListResult) ListJSON {
	doc := ListJSON{
		Total:      result.Total,
		Eligible:   len(result.Candidates),
		Candidates: make([]CandidateJSON, 0, len(result.Candidates)),
	}
	for _, c := range result.Candidates {
		cj := CandidateJSON{
			ID:          c.ID(),
			Title:       c.Title(),
			SubjectType: c.SubjectType(),
			Repository:  c.Repository(),
			Reason:      c.ReasonToDelete,
			URL:         c.Notification.GetSubject().GetURL(),
		}
		if updated := c.UpdatedAt(); !updated.IsZero() {
			cj.UpdatedAt = &updated
		}
		doc.Candidates = append(doc.Candidates, cj)
	}
	return doc
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
