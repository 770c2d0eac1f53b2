// cmd/docwiki/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/docwiki/internal/config"
	"github.com/julianshen/docwiki/internal/runner"
	"github.com/julianshen/docwiki/internal/store"
	"github.com/julianshen/docwiki/internal/wiki"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	envFile    string
)

func versionString() string {
	return fmt.Sprintf("docwiki %s (commit: %s, built: %s)", version, commit, date)
}

func newRootCmd() *cobra.Command {
	gen := generateCmd()

	rootCmd := &cobra.Command{
		Use:   "docwiki",
		Short: "Scaffold project documentation and publish it to Confluence",
		Long: `docwiki clones a repository, scaffolds a documentation folder for an LLM
to fill in, and publishes the finished folder to Confluence as a page tree.

Running docwiki without a subcommand is the same as "docwiki generate".`,
		Args:          cobra.NoArgs,
		RunE:          gen.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/docwiki/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file with Confluence credentials")
	rootCmd.Flags().AddFlagSet(gen.Flags())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(gen)
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(promptCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(initCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDir returns ~/.config/docwiki.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "docwiki"), nil
}

// resolveConfigPath returns --config or ~/.config/docwiki/config.toml.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfig() (*config.Config, error) {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openLedger opens the publish ledger, creating its directory if needed.
func openLedger(cfg *config.Config) (*store.Store, error) {
	dbPath := cfg.Publish.LedgerPath
	if dbPath == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dir, "ledger.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", dbPath, err)
	}
	return s, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// --- Adapter types ---
//
// These adapters bridge the wiki package's interfaces to the storage layer,
// which has no dependency on wiki types.

// ledgerAdapter records published pages in the SQLite ledger.
type ledgerAdapter struct {
	store *store.Store
}

var _ wiki.Ledger = (*ledgerAdapter)(nil)

func (a *ledgerAdapter) RecordPage(_ context.Context, p wiki.PublishedPage) error {
	return a.store.RecordPage(store.PageRecord{
		SpaceKey: p.SpaceKey,
		Title:    p.Title,
		PageID:   p.PageID,
		ParentID: p.ParentID,
		Document: p.Document,
		Action:   p.Action,
		RunID:    p.RunID,
	})
}
