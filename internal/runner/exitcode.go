package runner

import (
	"fmt"

	"github.com/julianshen/docwiki/internal/output"
)

// Exit codes of the publish command.
const (
	ExitOK            = 0
	ExitPartialFailed = 1 // some child documents failed
	ExitRunFailed     = 2 // nothing usable was published
)

// ExitError is returned when a command should exit with a non-zero code.
// Using a typed error instead of os.Exit ensures deferred cleanup runs.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCodeFromResult maps a publish result to an exit code: a run-level
// error is ExitRunFailed, any failed page is ExitPartialFailed.
func ExitCodeFromResult(result *output.PublishResult) int {
	if result == nil || result.Error != "" {
		return ExitRunFailed
	}
	if result.Failed() > 0 {
		return ExitPartialFailed
	}
	return ExitOK
}
