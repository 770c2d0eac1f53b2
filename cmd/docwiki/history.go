// cmd/docwiki/history.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/store"
)

func historyCmd() *cobra.Command {
	var (
		limitFlag int
		pagesFlag bool
		spaceFlag string
		titleFlag string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past publish runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ledger, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer ledger.Close()

			space := spaceFlag
			if space == "" {
				space = cfg.Confluence.SpaceKey
			}
			if titleFlag != "" {
				return writePage(cmd.OutOrStdout(), ledger, space, titleFlag)
			}
			if pagesFlag {
				return writePages(cmd.OutOrStdout(), ledger, space)
			}
			return writeRuns(cmd.OutOrStdout(), ledger, limitFlag)
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 10, "number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&pagesFlag, "pages", false, "list published pages instead of runs")
	cmd.Flags().StringVar(&spaceFlag, "space", "", "space of the pages to list (default from config)")
	cmd.Flags().StringVar(&titleFlag, "title", "", "show the last publication of one page title")

	return cmd
}

func writeRuns(w io.Writer, ledger *store.Store, limit int) error {
	runs, err := ledger.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No publish runs recorded.")
		return nil
	}
	fmt.Fprintln(w, "| Run | Space | Docs | State | Documents | Failed | Started |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, r := range runs {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %d | %d | %s |\n",
			r.RunID, r.SpaceKey, r.DocsDir, r.State, r.Documents, r.Failed, r.StartedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func writePages(w io.Writer, ledger *store.Store, space string) error {
	pages, err := ledger.ListPages(space)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		fmt.Fprintln(w, "No published pages recorded.")
		return nil
	}
	writePageRows(w, pages)
	return nil
}

// writePage looks up one title; the page ledger is keyed by space and title.
func writePage(w io.Writer, ledger *store.Store, space, title string) error {
	if space == "" {
		return fmt.Errorf("--title needs a space: pass --space or set confluence.space_key")
	}
	rec, err := ledger.GetPage(space, title)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintf(w, "No page titled %q recorded in %s.\n", title, space)
		return nil
	}
	writePageRows(w, []store.PageRecord{*rec})
	return nil
}

func writePageRows(w io.Writer, pages []store.PageRecord) {
	fmt.Fprintln(w, "| Space | Title | Page | Parent | Document | Action | Run |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, p := range pages {
		parent := p.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			p.SpaceKey, p.Title, p.PageID, parent, p.Document, p.Action, p.RunID)
	}
}
