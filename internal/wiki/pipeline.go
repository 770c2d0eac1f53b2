package wiki

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianshen/docwiki/internal/integrations"
)

// Config holds all pipeline configuration.
type Config struct {
	DocsDir  string
	Diagrams DiagramConfig
	Publish  PublishConfig
	Progress io.Writer // nil means stderr
}

// Run executes the full publish pipeline: load -> render diagrams ->
// convert -> create pages -> attach images.
func Run(ctx context.Context, cfg Config, client PageClient, runner integrations.CommandRunner, opts ...PublisherOption) (*Report, error) {
	progress := cfg.Progress
	if progress == nil {
		progress = os.Stderr
	}

	fmt.Fprintf(progress, "publish: loading %s...\n", cfg.DocsDir)
	set, err := LoadDocSet(cfg.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if len(set.Documents) == 0 {
		return nil, fmt.Errorf("load: no Markdown documents in %s", cfg.DocsDir)
	}

	renderer, err := NewDiagramRenderer(cfg.Diagrams, runner)
	if err != nil {
		return nil, fmt.Errorf("diagrams: %w", err)
	}

	fmt.Fprintf(progress, "publish: publishing %d documents to space %s...\n", len(set.Documents), cfg.Publish.SpaceKey)
	opts = append([]PublisherOption{WithProgress(progress)}, opts...)
	return NewPublisher(client, renderer, cfg.Publish, opts...).Publish(ctx, set)
}
