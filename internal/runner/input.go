// internal/runner/input.go
package runner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ResolveRepoURL determines the repository to clone.
// Priority: flag value > first non-empty line of stdinReader.
// stdinReader may be nil if stdin is a TTY (no pipe).
func ResolveRepoURL(flagValue string, stdinReader io.Reader) (string, error) {
	if url := strings.TrimSpace(flagValue); url != "" {
		return url, nil
	}

	if stdinReader != nil {
		scanner := bufio.NewScanner(stdinReader)
		for scanner.Scan() {
			if url := strings.TrimSpace(scanner.Text()); url != "" {
				return url, nil
			}
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
	}

	return "", fmt.Errorf("no repository URL provided: use --repo or pipe it to stdin")
}
