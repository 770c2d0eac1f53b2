// cmd/docwiki/preview.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/tui"
	"github.com/julianshen/docwiki/internal/wiki"
)

func previewCmd() *cobra.Command {
	var (
		storageFlag bool
		styleFlag   string
		widthFlag   int
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Preview a document in the terminal or as Confluence storage format",
		Long: `Render one Markdown document for review before publishing. By default it is
shown as styled terminal output. With --storage the Confluence storage format
body is printed instead, as publish would send it. Diagram blocks are not
rendered in either mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := wiki.LoadDocument(args[0])
			if err != nil {
				return err
			}

			if storageFlag {
				return writeStorage(cmd.OutOrStdout(), doc)
			}

			style := styleFlag
			if !isTerminal(os.Stdout) {
				style = "notty"
			}
			return writeTerminalPreview(cmd.OutOrStdout(), doc, style, widthFlag)
		},
	}

	cmd.Flags().BoolVar(&storageFlag, "storage", false, "print the Confluence storage format body")
	cmd.Flags().StringVar(&styleFlag, "style", "dark", "glamour style: dark, light, notty")
	cmd.Flags().IntVar(&widthFlag, "width", 100, "word wrap width")

	return cmd
}

func writeStorage(w io.Writer, doc wiki.Document) error {
	body, err := wiki.NewStorageConverter(nil).Convert(doc.Body)
	if err != nil {
		return fmt.Errorf("converting %s: %w", doc.Path, err)
	}
	fmt.Fprintln(w, body)
	return nil
}

func writeTerminalPreview(w io.Writer, doc wiki.Document, style string, width int) error {
	r, err := tui.NewMarkdownRenderer(style, width)
	if err != nil {
		return err
	}
	rendered, err := r.Render(doc.Body)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", doc.Path, err)
	}
	if doc.Title != "" {
		fmt.Fprintln(w, tui.Title(doc.Title))
	}
	fmt.Fprint(w, rendered)
	return nil
}
