// cmd/docwiki/prompt.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/scaffold"
)

func promptCmd() *cobra.Command {
	var (
		repoDirFlag string
		docsDirFlag string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the LLM prompt that fills in the documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repoDir := repoDirFlag
			if repoDir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				repoDir = cfg.Generate.Dest
			}
			docsDir := docsDirFlag
			if docsDir == "" {
				docsDir = scaffold.DocsDir(repoDir)
			}
			fmt.Fprint(cmd.OutOrStdout(), scaffold.Prompt(repoDir, docsDir))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDirFlag, "repo-dir", "", "clone the prompt refers to (default from config, \"cloned_repo\")")
	cmd.Flags().StringVar(&docsDirFlag, "docs-dir", "", "documentation folder the prompt refers to")

	return cmd
}
