package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"castro/internal/capture"
	"castro/internal/config"
	"castro/internal/history"
	"castro/internal/logging"
	"castro/internal/pipeline"
	"castro/internal/sessionlock"
)

type recordingFlags struct {
	filename  string
	host      string
	display   int
	framerate int
	clipping  string
	port      int
	passwd    string
	dataDir   string
	quiet     bool
}

func (f *recordingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.filename, "filename", "f", "", "Output file name inside the data directory")
	flags.StringVar(&f.host, "host", "", "VNC host")
	flags.IntVar(&f.display, "display", 0, "VNC display number")
	flags.IntVarP(&f.framerate, "framerate", "r", 0, "Capture framerate (also the keyframe interval)")
	flags.StringVar(&f.clipping, "clipping", "", "Clipping rectangle, e.g. 640x480+0+0")
	flags.IntVar(&f.port, "port", 0, "VNC port override")
	flags.StringVar(&f.passwd, "password-file", "", "VNC password file")
	flags.StringVarP(&f.dataDir, "data-dir", "d", "", "Directory for the capture and intermediate files")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Silence external tool output")
}

// apply copies explicitly set flags onto cfg.
func (f *recordingFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	rec := &cfg.Recording
	if flags.Changed("filename") {
		rec.Filename = strings.TrimSpace(f.filename)
	}
	if flags.Changed("host") {
		rec.Host = strings.TrimSpace(f.host)
	}
	if flags.Changed("display") {
		rec.Display = f.display
	}
	if flags.Changed("framerate") {
		rec.Framerate = f.framerate
	}
	if flags.Changed("clipping") {
		rec.Clipping = strings.TrimSpace(f.clipping)
	}
	if flags.Changed("port") {
		rec.Port = f.port
	}
	if flags.Changed("password-file") {
		expanded, err := config.ExpandPath(strings.TrimSpace(f.passwd))
		if err != nil {
			return err
		}
		rec.PasswordFile = expanded
	}
	if flags.Changed("data-dir") {
		expanded, err := config.ExpandPath(strings.TrimSpace(f.dataDir))
		if err != nil {
			return err
		}
		rec.DataDir = expanded
	}
	if flags.Changed("quiet") {
		rec.Quiet = f.quiet
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.EnsureDirectories()
}

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var (
		recFlags  recordingFlags
		duration  time.Duration
		countdown bool
		noProcess bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the VNC display until interrupted, then post-process",
		Long: "Record the configured VNC display. Recording stops on Ctrl-C, when --duration\n" +
			"elapses, or when the capture tool exits. The capture is then keyframed, probed,\n" +
			"and tagged with one navigation cuepoint per second unless --no-process is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := recFlags.apply(cmd, cfg); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lock, err := sessionlock.Acquire(cfg.Recording.DataDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("release session lock", logging.Error(err))
				}
			}()

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner := ctx.runner(cmd)
			opts := capture.OptionsFromConfig(cfg)
			recorder := capture.ExecRecorder{
				Command:   opts.Command,
				Quiet:     opts.Quiet,
				Stdout:    cmd.OutOrStdout(),
				Stderr:    cmd.ErrOrStderr(),
				StopGrace: opts.StopGrace,
			}
			session, err := capture.NewSession(opts, recorder, pipeline.NewFromConfig(cfg, runner, logger), logger)
			if err != nil {
				return err
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runRecording(signalCtx, cmd.OutOrStdout(), session, store, recordPlan{
				duration:  duration,
				countdown: countdown,
				process:   !noProcess,
			}, logger)
		},
	}

	recFlags.register(cmd)
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop automatically after this long (e.g. 10s); 0 records until interrupted")
	cmd.Flags().BoolVar(&countdown, "countdown", false, "Print a per-second countdown while recording with --duration")
	cmd.Flags().BoolVar(&noProcess, "no-process", false, "Leave the raw capture without post-processing")
	return cmd
}

type recordPlan struct {
	duration  time.Duration
	countdown bool
	process   bool
}

func runRecording(ctx context.Context, out io.Writer, session *capture.Session, store *history.Store, plan recordPlan, logger *slog.Logger) error {
	if err := session.Start(); err != nil {
		return err
	}
	handle := session.Handle()
	record := historyRecorder{store: store, id: handle.ID, logger: logger}
	record.begin(ctx, session)

	fmt.Fprintf(out, "Recording %s to %s\n", session.Options().Target(), session.Paths().Output)
	if plan.duration > 0 {
		fmt.Fprintf(out, "Recording a %s video...\n", plan.duration)
	} else {
		fmt.Fprintln(out, "Press Ctrl-C to stop")
	}

	waitForStop(ctx, out, session, plan)

	stopErr := session.Stop()
	record.stopped(handle.StoppedAt())
	if stopErr != nil {
		record.failed(stopErr)
		return stopErr
	}
	if !plan.process {
		fmt.Fprintf(out, "Capture saved to %s\n", session.Paths().Output)
		return nil
	}

	// Post-processing runs even after Ctrl-C, so it gets a fresh context.
	result, err := session.Process(context.WithoutCancel(ctx))
	if err != nil {
		record.failed(err)
		return err
	}
	record.processed(result)
	fmt.Fprintf(out, "Wrote %s (%d seconds, %d cuepoints)\n", session.Paths().Output, result.Duration, result.Cuepoints)
	return nil
}

func waitForStop(ctx context.Context, out io.Writer, session *capture.Session, plan recordPlan) {
	var deadline <-chan time.Time
	if plan.duration > 0 {
		timer := time.NewTimer(plan.duration)
		defer timer.Stop()
		deadline = timer.C
	}
	var tick <-chan time.Time
	remaining := int(plan.duration / time.Second)
	if plan.countdown && remaining > 0 {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		tick = ticker.C
		fmt.Fprintf(out, "%d ", remaining)
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return
		case <-session.Done():
			fmt.Fprintln(out)
			return
		case <-deadline:
			if tick != nil {
				fmt.Fprintln(out)
			}
			return
		case <-tick:
			remaining--
			if remaining > 0 {
				fmt.Fprintf(out, "%d ", remaining)
			}
		}
	}
}

// historyRecorder mirrors session progress into the history store. Failures
// are logged and never abort the recording.
type historyRecorder struct {
	store  *history.Store
	id     string
	logger *slog.Logger
}

func (h historyRecorder) begin(ctx context.Context, session *capture.Session) {
	if h.store == nil {
		return
	}
	_, err := h.store.Begin(ctx, history.Entry{
		ID:         h.id,
		Filename:   session.Options().Filename,
		OutputPath: session.Paths().Output,
		Target:     session.Options().Target(),
		StartedAt:  session.Handle().StartedAt(),
	})
	h.report(err)
}

func (h historyRecorder) stopped(at time.Time) {
	if h.store == nil {
		return
	}
	h.report(h.store.MarkStopped(context.Background(), h.id, at))
}

func (h historyRecorder) processed(result pipeline.Result) {
	if h.store == nil {
		return
	}
	h.report(h.store.MarkProcessed(context.Background(), h.id, result.Duration, result.Transcoder, time.Now()))
}

func (h historyRecorder) failed(cause error) {
	if h.store == nil {
		return
	}
	h.report(h.store.MarkFailed(context.Background(), h.id, cause))
}

func (h historyRecorder) report(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	h.logger.Warn("history update failed", logging.String(logging.FieldSessionID, h.id), logging.Error(err))
}
