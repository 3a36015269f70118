package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"castro/internal/services"
)

// stderrTailLimit bounds how much stderr an ExitError keeps.
const stderrTailLimit = 4 * 1024

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string
	// Capture returns stdout to the caller instead of discarding it.
	Capture bool
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes a command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExitError reports a command that exited non-zero.
type ExitError struct {
	Command  Command
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command.String(), e.ExitCode)
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

func (e *ExitError) Is(target error) bool {
	return target == services.ErrToolExecution
}

var commandContext = exec.CommandContext

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Quiet sends stdout and stderr to a null sink.
	Quiet bool
	// Stderr receives the child's stderr when not quiet. Defaults to os.Stderr.
	Stderr io.Writer
}

// Run executes cmd and blocks until it exits.
func (r ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrToolUnavailable, "exec", "", "command name is empty", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	proc := commandContext(ctx, name, cmd.Args...) //nolint:gosec
	proc.Stdin = nil

	var stdout bytes.Buffer
	switch {
	case cmd.Capture:
		proc.Stdout = &stdout
	default:
		proc.Stdout = io.Discard
	}

	tail := &tailBuffer{limit: stderrTailLimit}
	if r.Quiet {
		proc.Stderr = io.Discard
	} else {
		sink := r.Stderr
		if sink == nil {
			sink = os.Stderr
		}
		proc.Stderr = io.MultiWriter(sink, tail)
	}

	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{
				Command:  cmd,
				ExitCode: exitErr.ExitCode(),
				Stderr:   tail.String(),
				Err:      err,
			}
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrToolUnavailable, "exec", name, "binary not found", err)
		}
		return nil, services.Wrap(services.ErrToolExecution, "exec", cmd.String(), "", err)
	}
	return stdout.Bytes(), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
