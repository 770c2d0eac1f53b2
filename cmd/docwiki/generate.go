// cmd/docwiki/generate.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/integrations"
	"github.com/julianshen/docwiki/internal/repo"
	"github.com/julianshen/docwiki/internal/runner"
	"github.com/julianshen/docwiki/internal/scaffold"
	"github.com/julianshen/docwiki/internal/tui"
)

func generateCmd() *cobra.Command {
	var (
		repoFlag      string
		destFlag      string
		noWaitFlag    bool
		keepCloneFlag bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Clone a repository and scaffold its documentation folder",
		Long: `Clone a repository, write placeholder documents into a "docs" folder next
to the clone and print the prompt to paste into an LLM session. Once the
documents are written, the clone is removed.

The repository URL is taken from --repo, from the first line of piped
stdin, or asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dest := destFlag
			if dest == "" {
				dest = cfg.Generate.Dest
			}

			interactive := isTerminal(os.Stdin)
			url := repoFlag
			if url == "" && interactive {
				form := tui.NewGenerateForm("", dest)
				if err := form.Run(); err != nil {
					return fmt.Errorf("reading repository: %w", err)
				}
				url, dest = form.RepoURL(), form.Dest()
			} else {
				var stdinReader io.Reader
				if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
					stdinReader = os.Stdin
				}
				url, err = runner.ResolveRepoURL(repoFlag, stdinReader)
				if err != nil {
					return err
				}
			}

			git := integrations.NewGitRunner(cfg.Generate.GitBinary)
			g := &generator{
				acquirer:  repo.NewAcquirer(git),
				git:       git,
				out:       cmd.OutOrStdout(),
				animate:   isTerminal(os.Stdout),
				keepClone: keepCloneFlag,
			}
			switch {
			case noWaitFlag:
			case interactive:
				g.wait = confirmDocsWritten
			default:
				g.wait = waitForLine(os.Stdin, g.out)
			}
			return g.run(cmd.Context(), url, dest)
		},
	}

	cmd.Flags().StringVar(&repoFlag, "repo", "", "repository URL to clone")
	cmd.Flags().StringVar(&destFlag, "dest", "", "clone destination (default from config, \"cloned_repo\")")
	cmd.Flags().BoolVar(&noWaitFlag, "no-wait", false, "exit after printing the prompt and keep the clone")
	cmd.Flags().BoolVar(&keepCloneFlag, "keep-clone", false, "do not delete the clone at the end")

	return cmd
}

// headReader reads the commit a clone is checked out at.
type headReader interface {
	HeadCommit(ctx context.Context, repoDir string) (integrations.GitCommit, error)
}

// generator runs the clone, scaffold and prompt steps.
type generator struct {
	acquirer *repo.Acquirer
	git      headReader
	out      io.Writer
	animate  bool
	// wait blocks until the operator has filled in the documents. It reports
	// false when the operator is not done yet. Nil means do not wait, and
	// the clone is kept for the LLM session.
	wait      func() (bool, error)
	keepClone bool
}

func (g *generator) run(ctx context.Context, url, dest string) error {
	var clonePath string
	err := tui.RunTask(ctx, g.out, "Cloning "+url, g.animate, func() error {
		var err error
		clonePath, err = g.acquirer.Acquire(ctx, url, dest)
		return err
	})
	if err != nil {
		return err
	}
	if clonePath != dest {
		tui.Statusf(g.out, tui.Warning, "%s could not be replaced, cloned into %s instead", dest, clonePath)
	}
	if head, err := g.git.HeadCommit(ctx, clonePath); err == nil {
		tui.Statusf(g.out, tui.Success, "Cloned %s at %s (%s)", url, shortHash(head.Hash), head.Message)
	} else {
		log.Printf("WARNING: reading HEAD of %s: %v", clonePath, err)
	}

	res, err := scaffold.Emit(clonePath)
	if err != nil {
		return fmt.Errorf("writing templates: %w", err)
	}
	tui.Statusf(g.out, tui.Success, "Wrote %d placeholder documents to %s", len(res.Files), res.DocsDir)

	fmt.Fprintln(g.out)
	fmt.Fprintln(g.out, tui.Title("Paste this prompt into your LLM session:"))
	fmt.Fprintln(g.out, tui.PromptBox(scaffold.Prompt(clonePath, res.DocsDir)))
	fmt.Fprintln(g.out)

	if g.wait == nil {
		tui.Statusf(g.out, tui.Muted, "Clone kept at %s. Run \"docwiki publish %s\" when the documents are ready.", clonePath, res.DocsDir)
		return nil
	}
	done, err := g.wait()
	if err != nil {
		return err
	}
	if !done || g.keepClone {
		tui.Statusf(g.out, tui.Muted, "Clone kept at %s", clonePath)
		return nil
	}

	if err := g.acquirer.Cleanup(clonePath); err != nil {
		tui.Statusf(g.out, tui.Warning, "could not remove clone: %v", err)
		return nil
	}
	tui.Statusf(g.out, tui.Success, "Removed %s. Next: docwiki publish %s", clonePath, res.DocsDir)
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func confirmDocsWritten() (bool, error) {
	ok, err := tui.Confirm("Are the documents written?",
		"Choose Yes once the LLM has filled in every document. The clone is deleted afterwards.")
	if err != nil {
		return false, fmt.Errorf("waiting for confirmation: %w", err)
	}
	return ok, nil
}

// waitForLine waits for one line on r. A closed input counts as confirmation.
func waitForLine(r io.Reader, out io.Writer) func() (bool, error) {
	return func() (bool, error) {
		fmt.Fprintln(out, "Press Enter when the documents are written...")
		_, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("waiting for input: %w", err)
		}
		return true, nil
	}
}
