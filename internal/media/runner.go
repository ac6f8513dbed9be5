package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs external commands. Tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command, folding its stderr into the returned error.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return withStderr(err, stderr.Bytes())
	}
	return nil
}

// Output executes a command and returns its stdout.
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, withStderr(err, exitErr.Stderr)
		}
		return out, err
	}
	return out, nil
}

func withStderr(err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return err
	}
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return fmt.Errorf("%w: %s", err, msg)
}

// commandFailure describes why a command did not complete.
func commandFailure(ctx context.Context, tool string, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return tool + " timed out"
	case errors.Is(err, exec.ErrNotFound):
		return tool + " not found"
	default:
		return tool + " failed"
	}
}
