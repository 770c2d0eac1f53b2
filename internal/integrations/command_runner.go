package integrations

import (
	"context"
	"os/exec"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// CombinedOutput runs a command and returns combined stdout+stderr.
func (ExecRunner) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	return cmd.CombinedOutput()
}

// MockRunner implements CommandRunner for tests.
type MockRunner struct {
	CombinedOutputFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	Calls              [][]string
}

// CombinedOutput records the call and delegates to the configured function.
func (m *MockRunner) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.CombinedOutputFunc != nil {
		return m.CombinedOutputFunc(ctx, dir, name, args...)
	}
	return nil, nil
}
