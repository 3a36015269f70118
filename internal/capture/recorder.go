package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"castro/internal/services"
)

// Recorder runs the capture until ctx is cancelled or the capture ends on
// its own. A cancelled ctx is the request to stop.
type Recorder interface {
	Record(ctx context.Context, args []string) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, args []string) error

func (f RecorderFunc) Record(ctx context.Context, args []string) error {
	return f(ctx, args)
}

var commandContext = exec.CommandContext

// ExecRecorder runs the capture tool as a child process.
type ExecRecorder struct {
	Command string
	Quiet   bool
	// Stdout and Stderr default to the parent's streams when not quiet.
	Stdout io.Writer
	Stderr io.Writer
	// StopGrace is how long the process may take to exit after SIGINT
	// before it is killed. Zero waits indefinitely.
	StopGrace time.Duration
}

// Record starts the capture tool and blocks until it exits. An exit that
// follows a stop request is not an error unless the process had to be killed.
func (r ExecRecorder) Record(ctx context.Context, args []string) error {
	name := strings.TrimSpace(r.Command)
	if name == "" {
		name = DefaultCommand
	}

	cmd := commandContext(ctx, name, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.StopGrace

	if r.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = writerOr(r.Stdout, os.Stdout)
		cmd.Stderr = writerOr(r.Stderr, os.Stderr)
	}

	err := cmd.Run()
	if ctx.Err() == nil {
		if err == nil {
			return nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrToolUnavailable, "capture", name, "binary not found", err)
		}
		return services.Wrap(services.ErrToolExecution, "capture", name, "capture exited before stop was requested", err)
	}

	if killed(cmd.ProcessState) {
		return services.Wrap(services.ErrTimeout, "capture", "stop", "capture ignored interrupt and was killed after "+r.StopGrace.String(), err)
	}
	return nil
}

func killed(state *os.ProcessState) bool {
	if state == nil {
		return false
	}
	status, ok := state.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == syscall.SIGKILL
}

func writerOr(w io.Writer, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
