package integrations

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitCommit represents a git log entry.
type GitCommit struct {
	Hash    string
	Author  string
	Message string
}

// GitRunner executes git commands.
type GitRunner struct {
	binary string
}

// NewGitRunner creates a GitRunner that invokes the given git binary.
// An empty binary means "git" from PATH.
func NewGitRunner(binary string) *GitRunner {
	if binary == "" {
		binary = "git"
	}
	return &GitRunner{binary: binary}
}

// Clone runs git clone url dest. A non-zero exit is returned as an error
// carrying git's stderr; dest may be left partially populated by git.
func (g *GitRunner) Clone(ctx context.Context, url, dest string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("git clone: empty repository url")
	}
	_, err := g.run(ctx, "", "clone", "--quiet", url, dest)
	return err
}

// Log runs git log inside repoDir and parses the output into structured commits.
// Uses ASCII record separator (\x1e) as delimiter to avoid conflicts
// with pipe characters that may appear in commit subjects or author names.
func (g *GitRunner) Log(ctx context.Context, repoDir string, args ...string) ([]GitCommit, error) {
	const sep = "\x1e"
	cmdArgs := append([]string{"log", "--format=%H%x1e%an%x1e%s"}, args...)
	out, err := g.run(ctx, repoDir, cmdArgs...)
	if err != nil {
		return nil, err
	}

	var commits []GitCommit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, sep, 3)
		if len(parts) < 3 {
			continue
		}
		commits = append(commits, GitCommit{
			Hash:    parts[0],
			Author:  parts[1],
			Message: parts[2],
		})
	}

	return commits, nil
}

// HeadCommit returns the commit checked out in repoDir.
func (g *GitRunner) HeadCommit(ctx context.Context, repoDir string) (GitCommit, error) {
	commits, err := g.Log(ctx, repoDir, "-1")
	if err != nil {
		return GitCommit{}, err
	}
	if len(commits) == 0 {
		return GitCommit{}, fmt.Errorf("git log: no commits in %s", repoDir)
	}
	return commits[0], nil
}

func (g *GitRunner) run(ctx context.Context, dir string, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("git: no subcommand provided")
	}
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
