// cmd/docwiki/publish.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/config"
	"github.com/julianshen/docwiki/internal/confluence"
	"github.com/julianshen/docwiki/internal/integrations"
	"github.com/julianshen/docwiki/internal/output"
	"github.com/julianshen/docwiki/internal/runner"
	"github.com/julianshen/docwiki/internal/store"
	"github.com/julianshen/docwiki/internal/tui"
	"github.com/julianshen/docwiki/internal/wiki"
)

// dryRunSpaceKey stands in for the space when a dry run has no configured one.
const dryRunSpaceKey = "DRYRUN"

func publishCmd() *cobra.Command {
	var (
		dryRunFlag       bool
		outputFlag       string
		onConflictFlag   string
		rewriteLinksFlag bool
		prefixTitlesFlag bool
	)

	cmd := &cobra.Command{
		Use:   "publish [docs-dir]",
		Short: "Publish a documentation folder to Confluence",
		Long: `Publish every Markdown document in docs-dir to Confluence. index.md becomes
the parent page and every other document its child. Diagram blocks are
rendered to PNG and attached, code blocks become code macros.

With --dry-run nothing is sent to Confluence; pages are built in memory and
their storage bodies are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			docsDir := cfg.Publish.DocsDir
			if len(args) > 0 {
				docsDir = args[0]
			}
			if onConflictFlag != "" {
				cfg.Publish.OnConflict = onConflictFlag
			}
			if cmd.Flags().Changed("rewrite-links") {
				cfg.Publish.RewriteLinks = rewriteLinksFlag
			}
			if cmd.Flags().Changed("prefix-titles") {
				cfg.Publish.PrefixChildTitles = prefixTitlesFlag
			}

			formatter, err := newFormatter(outputFlag)
			if err != nil {
				return err
			}
			pipelineCfg, err := newPipelineConfig(cfg, docsDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var (
				client wiki.PageClient
				memory *wiki.MemoryClient
				ledger *store.Store
				opts   []wiki.PublisherOption
			)
			if dryRunFlag {
				memory = wiki.NewMemoryClient()
				client = memory
				if pipelineCfg.Publish.SpaceKey == "" {
					pipelineCfg.Publish.SpaceKey = dryRunSpaceKey
				}
			} else {
				if err := cfg.Validate(); err != nil {
					if tui.NeedsSetup(cfg) {
						return fmt.Errorf("%w (run \"docwiki init\" to configure Confluence)", err)
					}
					return err
				}
				client = newConfluenceClient(cfg)
				ledger, err = openLedger(cfg)
				if err != nil {
					return err
				}
				defer ledger.Close()
				opts = append(opts, wiki.WithLedger(&ledgerAdapter{store: ledger}))
			}

			hr := runner.NewHeadlessRunner(func(ctx context.Context) (*wiki.Report, error) {
				return wiki.Run(ctx, pipelineCfg, client, integrations.ExecRunner{}, opts...)
			})
			result := hr.Run(cmd.Context(), docsDir, dryRunFlag)

			if ledger != nil && result.RunID != "" {
				saveRun(ledger, result)
			}

			out, err := formatter.Format(result)
			if err != nil {
				return fmt.Errorf("formatting output: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, string(out))
			if memory != nil && outputFlag != "json" {
				writeStorageBodies(w, memory.Pages())
			}

			if code := runner.ExitCodeFromResult(result); code != runner.ExitOK {
				if result.Error != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), tui.Error(result.Error))
				}
				return &runner.ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "build pages in memory instead of publishing")
	cmd.Flags().StringVar(&outputFlag, "output", "markdown", "output format: json, markdown")
	cmd.Flags().StringVar(&onConflictFlag, "on-conflict", "", "when a page title exists: fail, update or create (default from config, \"fail\")")
	cmd.Flags().BoolVar(&rewriteLinksFlag, "rewrite-links", false, "rewrite links between documents into wiki page links")
	cmd.Flags().BoolVar(&prefixTitlesFlag, "prefix-titles", false, "prefix child page titles with the index title")

	return cmd
}

func newFormatter(name string) (output.Formatter, error) {
	switch name {
	case "json":
		return output.NewJSONFormatter(), nil
	case "", "markdown":
		return output.NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or markdown)", name)
	}
}

// newPipelineConfig maps loaded settings onto the publish pipeline.
func newPipelineConfig(cfg *config.Config, docsDir string, progress io.Writer) (wiki.Config, error) {
	policy, err := wiki.ParseConflictPolicy(cfg.Publish.OnConflict)
	if err != nil {
		return wiki.Config{}, err
	}
	return wiki.Config{
		DocsDir: docsDir,
		Diagrams: wiki.DiagramConfig{
			Languages: cfg.Diagrams.Languages,
			Renderer:  cfg.Diagrams.Renderer,
		},
		Publish: wiki.PublishConfig{
			SpaceKey:          cfg.Confluence.SpaceKey,
			FallbackTitle:     cfg.Publish.FallbackTitle,
			RewriteLinks:      cfg.Publish.RewriteLinks,
			PrefixChildTitles: cfg.Publish.PrefixChildTitles,
			OnConflict:        policy,
			ImageDir:          cfg.Diagrams.OutputDir,
		},
		Progress: progress,
	}, nil
}

func newConfluenceClient(cfg *config.Config) *confluence.Client {
	return confluence.New(cfg.Confluence.URL, cfg.Confluence.Username, cfg.Confluence.APIToken,
		confluence.WithTimeout(time.Duration(cfg.Confluence.TimeoutSeconds)*time.Second),
		confluence.WithRateLimit(cfg.Confluence.RequestsPerSecond),
	)
}

func saveRun(ledger *store.Store, result *output.PublishResult) {
	err := ledger.SaveRun(store.RunRecord{
		RunID:     result.RunID,
		SpaceKey:  result.SpaceKey,
		DocsDir:   result.DocsDir,
		State:     result.State,
		Documents: len(result.Pages),
		Failed:    result.Failed(),
	})
	if err != nil {
		log.Printf("WARNING: recording run %s: %v", result.RunID, err)
	}
}

// writeStorageBodies prints the storage format of every page a dry run built.
func writeStorageBodies(w io.Writer, pages []wiki.MemoryPage) {
	for _, p := range pages {
		fmt.Fprintf(w, "\n## %s\n\n", p.Title)
		if len(p.Attachments) > 0 {
			fmt.Fprintf(w, "Attachments: %v\n\n", p.Attachments)
		}
		fmt.Fprintf(w, "```xml\n%s\n```\n", p.Body)
	}
}
