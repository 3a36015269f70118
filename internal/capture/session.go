package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"castro/internal/logging"
	"castro/internal/paths"
	"castro/internal/pipeline"
	"castro/internal/services"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Processor runs post-processing for a finished capture.
type Processor interface {
	Process(ctx context.Context, job pipeline.Job) (pipeline.Result, error)
}

// Handle is one bound capture process. Each Init produces a new Handle.
type Handle struct {
	ID   string
	Args []string

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	startedAt time.Time
	stoppedAt time.Time
}

// Done is closed once the recorder returns.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err is the recorder's result; valid after Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// StartedAt reports when the capture was launched; zero before Start.
func (h *Handle) StartedAt() time.Time { return h.startedAt }

// StoppedAt reports when the recorder returned; zero before then.
func (h *Handle) StoppedAt() time.Time { return h.stoppedAt }

// Session owns one recording's configuration, process handle, and artifacts.
type Session struct {
	mu        sync.Mutex
	opts      Options
	paths     paths.Set
	recorder  Recorder
	processor Processor
	logger    *slog.Logger

	state    State
	handle   *Handle
	duration int
}

// NewSession resolves artifact paths and binds the first handle.
func NewSession(opts Options, recorder Recorder, processor Processor, logger *slog.Logger) (*Session, error) {
	if recorder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "capture", "session", "recorder is required", nil)
	}
	set := paths.Resolve(opts.Filename, opts.DataDir)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	opts.DataDir = set.DataDir
	s := &Session{
		opts:      opts,
		paths:     set,
		recorder:  recorder,
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "capture"),
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init rebuilds the capture arguments and binds a fresh, unstarted handle.
// It is refused while Recording.
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked()
}

func (s *Session) initLocked() error {
	if s.state == StateRecording {
		return services.Wrap(services.ErrInvalidState, "capture", "init", "session is recording; stop it first", nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.handle = &Handle{
		ID:     uuid.NewString(),
		Args:   BuildArgs(s.opts, s.paths.Output),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.state = StateIdle
	s.duration = 0
	s.logger.Debug("session initialized",
		logging.String(logging.FieldSessionID, s.handle.ID),
		logging.String("target", s.opts.Target()),
	)
	return nil
}

// Start launches the bound handle in the background. Only valid from Idle.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Session) startLocked() error {
	if s.state != StateIdle {
		return services.Wrap(services.ErrInvalidState, "capture", "start", fmt.Sprintf("session is %s; init it first", s.state), nil)
	}
	h := s.handle
	h.startedAt = time.Now()
	s.state = StateRecording

	logger := s.logger.With(logging.String(logging.FieldSessionID, h.ID))
	logger.Info("recording started",
		logging.String(logging.FieldEventType, "recording_start"),
		logging.String("output", s.paths.Output),
		logging.String("target", s.opts.Target()),
	)

	go func() {
		err := s.recorder.Record(h.ctx, h.Args)
		h.err = err
		h.stoppedAt = time.Now()
		close(h.done)
		if err != nil {
			logger.Warn("recorder returned error", logging.Error(err))
		}
	}()
	return nil
}

// Stop requests the capture to finish and blocks until it has. The returned
// error is the recorder's. The session mutex is released while waiting.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return services.Wrap(services.ErrInvalidState, "capture", "stop", fmt.Sprintf("session is %s", state), nil)
	}
	h := s.handle
	s.mu.Unlock()

	h.cancel()
	<-h.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == h && s.state == StateRecording {
		s.state = StateStopped
		s.logger.Info("recording stopped",
			logging.String(logging.FieldEventType, "recording_stop"),
			logging.String(logging.FieldSessionID, h.ID),
			logging.Duration("elapsed", h.stoppedAt.Sub(h.startedAt)),
		)
	}
	return h.err
}

// Restart stops a running capture, binds a new handle, and starts it.
// From Idle or Stopped it skips the stop. A failed stop does not prevent the
// new capture from starting; its error is returned alongside any start error.
func (s *Session) Restart() error {
	var stopErr error
	if s.State() == StateRecording {
		stopErr = s.Stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return errors.Join(stopErr, err)
	}
	return errors.Join(stopErr, s.startLocked())
}

// Process runs the post-process pipeline over the session's artifacts and
// records the measured duration.
func (s *Session) Process(ctx context.Context) (pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		return pipeline.Result{}, services.Wrap(services.ErrInvalidState, "capture", "process", "session is still recording", nil)
	}
	if s.processor == nil {
		return pipeline.Result{}, services.Wrap(services.ErrConfiguration, "capture", "process", "no post-processor configured", nil)
	}
	result, err := s.processor.Process(ctx, pipeline.Job{
		SessionID: s.handle.ID,
		Paths:     s.paths,
		Framerate: s.opts.Framerate,
	})
	if err != nil {
		return result, err
	}
	s.duration = result.Duration
	return result, nil
}

// Done is closed when the current handle's recorder returns.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.done
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle returns the currently bound process handle.
func (s *Session) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Paths returns the session's artifact locations.
func (s *Session) Paths() paths.Set { return s.paths }

// Options returns the session configuration.
func (s *Session) Options() Options { return s.opts }

// Duration is the rounded duration from the last successful Process.
func (s *Session) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}
