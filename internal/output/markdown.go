// internal/output/markdown.go
package output

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter outputs PublishResult as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the PublishResult as Markdown.
func (f *MarkdownFormatter) Format(result *PublishResult) ([]byte, error) {
	var b strings.Builder

	if result.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(result.Error)
		b.WriteString("\n\n")
	}

	if len(result.Pages) > 0 {
		b.WriteString("## Pages\n\n")
		b.WriteString("| Document | Title | Page | Action | Attachments | Status |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, p := range result.Pages {
			status := "ok"
			if p.Error != "" {
				status = "error: " + p.Error
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s |\n",
				p.Document, escapeCell(p.Title), dash(p.PageID), dash(p.Action), len(p.Attachments), escapeCell(status)))
		}
	}

	mode := ""
	if result.DryRun {
		mode = " (dry run)"
	}
	published := len(result.Pages) - result.Failed()
	docLabel := "documents"
	if len(result.Pages) == 1 {
		docLabel = "document"
	}
	elapsed := time.Duration(result.DurationMs) * time.Millisecond
	b.WriteString(fmt.Sprintf("\n---\n*Published %d of %d %s to space %s in %s%s, state %s*\n",
		published, len(result.Pages), docLabel, dash(result.SpaceKey), elapsed.Round(100*time.Millisecond), mode, result.State))

	return []byte(b.String()), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
