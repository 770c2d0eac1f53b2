// internal/runner/headless.go
package runner

import (
	"context"
	"time"

	"github.com/julianshen/docwiki/internal/output"
	"github.com/julianshen/docwiki/internal/wiki"
)

// PublishFunc matches the signature of wiki.Run bound to its arguments.
type PublishFunc func(ctx context.Context) (*wiki.Report, error)

// HeadlessRunner executes a publish run and collects the result.
type HeadlessRunner struct {
	publish PublishFunc
	now     func() time.Time
}

// NewHeadlessRunner creates a new HeadlessRunner with the given publish function.
func NewHeadlessRunner(publish PublishFunc) *HeadlessRunner {
	return &HeadlessRunner{publish: publish, now: time.Now}
}

// Run executes the publish function and collects a PublishResult. Publish
// errors are reported in the result, not returned.
func (r *HeadlessRunner) Run(ctx context.Context, docsDir string, dryRun bool) *output.PublishResult {
	start := r.now()
	report, err := r.publish(ctx)
	return output.NewPublishResult(report, docsDir, dryRun, r.now().Sub(start), err)
}
