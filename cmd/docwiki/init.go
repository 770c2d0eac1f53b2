// cmd/docwiki/init.go
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/julianshen/docwiki/internal/config"
	"github.com/julianshen/docwiki/internal/tui"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the Confluence settings to the config file",
		Long: `Ask for the Confluence URL, space and username and the publish defaults,
then write them to the config file. Existing settings are pre-filled.
The API token is never written; set ` + config.EnvAPIToken + ` or put it in .env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdin) {
				return errors.New("init needs an interactive terminal")
			}

			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Only settings that belong in the file are saved.
			cfg.Confluence.APIToken = ""

			form := tui.NewSetupForm(cfg, path)
			if err := form.Run(); err != nil {
				return fmt.Errorf("running setup: %w", err)
			}
			if form.IsAborted() {
				return nil
			}
			if err := form.Save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tui.Statusf(out, tui.Success, "Wrote %s", path)
			if cfg.Confluence.APITokenSource != "config" {
				tui.Statusf(out, tui.Muted, "Set %s in your environment or in %s before publishing.",
					config.EnvAPIToken, filepath.Clean(envFile))
			}
			return nil
		},
	}
}
