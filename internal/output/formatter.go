// internal/output/formatter.go
package output

import (
	"time"

	"github.com/julianshen/docwiki/internal/wiki"
)

// PublishResult holds the collected output of a publish run.
type PublishResult struct {
	RunID      string       `json:"run_id"`
	SpaceKey   string       `json:"space_key"`
	DocsDir    string       `json:"docs_dir"`
	DryRun     bool         `json:"dry_run,omitempty"`
	State      string       `json:"state"`
	DurationMs int64        `json:"duration_ms"`
	Pages      []PageResult `json:"pages"`
	Error      string       `json:"error,omitempty"`
}

// PageResult is the outcome for one document.
type PageResult struct {
	Document    string   `json:"document"`
	Title       string   `json:"title"`
	PageID      string   `json:"page_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Action      string   `json:"action,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewPublishResult builds a PublishResult from a publisher report. A nil
// report yields a result carrying only runErr.
func NewPublishResult(report *wiki.Report, docsDir string, dryRun bool, elapsed time.Duration, runErr error) *PublishResult {
	r := &PublishResult{
		DocsDir:    docsDir,
		DryRun:     dryRun,
		DurationMs: elapsed.Milliseconds(),
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if report == nil {
		r.State = wiki.StateFailed.String()
		return r
	}
	r.RunID = report.RunID
	r.SpaceKey = report.SpaceKey
	r.State = report.State.String()
	for _, d := range report.Documents {
		r.Pages = append(r.Pages, PageResult{
			Document:    d.Document,
			Title:       d.Title,
			PageID:      d.PageID,
			ParentID:    d.ParentID,
			Action:      d.Action,
			Attachments: d.Attachments,
			Error:       d.Error,
		})
	}
	return r
}

// Failed returns the number of pages that did not publish cleanly.
func (r *PublishResult) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// Formatter formats a PublishResult into output bytes.
type Formatter interface {
	Format(result *PublishResult) ([]byte, error)
}
