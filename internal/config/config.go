package config

// Config represents the top-level application configuration.
type Config struct {
	Confluence ConfluenceConfig `toml:"confluence"`
	Diagrams   DiagramsConfig   `toml:"diagrams"`
	Publish    PublishConfig    `toml:"publish"`
	Generate   GenerateConfig   `toml:"generate"`
}

// ConfluenceConfig holds the wiki endpoint and the identity used to publish.
// The API token is resolved separately; see Token.
type ConfluenceConfig struct {
	URL               string  `toml:"url"`
	SpaceKey          string  `toml:"space_key"`
	Username          string  `toml:"username"`
	APITokenSource    string  `toml:"api_token_source"`
	APIToken          string  `toml:"api_token,omitempty"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// DiagramsConfig controls which fenced blocks are pre-rendered and how.
type DiagramsConfig struct {
	// Languages maps a fence language tag to the extension of its source file.
	Languages map[string]string `toml:"languages"`
	// Renderer is the command line of the renderer; "-i <src> -o <png>" is appended.
	Renderer  string `toml:"renderer"`
	OutputDir string `toml:"output_dir"`
}

// PublishConfig holds settings for the publish pipeline.
type PublishConfig struct {
	DocsDir           string `toml:"docs_dir"`
	FallbackTitle     string `toml:"fallback_title"`
	RewriteLinks      bool   `toml:"rewrite_links"`
	PrefixChildTitles bool   `toml:"prefix_child_titles"`
	OnConflict        string `toml:"on_conflict"`
	LedgerPath        string `toml:"ledger_path"`
}

// GenerateConfig holds settings for cloning and scaffolding.
type GenerateConfig struct {
	Dest      string `toml:"dest"`
	GitBinary string `toml:"git_binary"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Confluence: ConfluenceConfig{
			APITokenSource: "env",
			TimeoutSeconds: 30,
		},
		Diagrams: DiagramsConfig{
			Languages: map[string]string{"mermaid": "mmd"},
			Renderer:  "mmdc",
		},
		Publish: PublishConfig{
			DocsDir:       "docs",
			FallbackTitle: "Project Documentation",
			OnConflict:    "fail",
		},
		Generate: GenerateConfig{
			Dest:      "cloned_repo",
			GitBinary: "git",
		},
	}
}
