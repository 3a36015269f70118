package pipeline

import (
	"context"
	"log/slog"
	"math"
	"os"
	"time"

	"castro/internal/cuepoint"
	"castro/internal/logging"
	"castro/internal/paths"
	"castro/internal/services"
	"castro/internal/transcode"
)

// Step names one post-process stage.
type Step string

const (
	StepKeyframe  Step = "keyframe"
	StepDuration  Step = "duration"
	StepCuepoints Step = "cuepoints"
	StepInject    Step = "inject"
	StepCleanup   Step = "cleanup"
)

// Steps lists the post-process stages in execution order.
var Steps = []Step{StepKeyframe, StepDuration, StepCuepoints, StepInject, StepCleanup}

// DefaultFramerate is the keyframe interval used when a job carries none.
const DefaultFramerate = 12

// Normalizer forces a keyframe every framerate frames.
type Normalizer interface {
	Normalize(ctx context.Context, input, output string, framerate int) (transcode.Dialect, error)
}

// DurationProber measures a media file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// Injector merges a cuepoint document into the final container.
type Injector interface {
	Inject(ctx context.Context, cuepoints, source, destination string) error
}

// Job is one post-process request.
type Job struct {
	SessionID string
	Paths     paths.Set
	Framerate int
}

// Result reports what a successful run produced.
type Result struct {
	Transcoder  string
	RawDuration float64
	Duration    int
	Cuepoints   int
	Elapsed     time.Duration
}

// Processor runs the post-process steps.
type Processor struct {
	Normalizer Normalizer
	Prober     DurationProber
	Injector   Injector
	Logger     *slog.Logger

	// remove deletes intermediate files; tests replace it.
	remove func(string) error
}

// Process runs every step for job in order and stops at the first failure.
func (p *Processor) Process(ctx context.Context, job Job) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := job.Paths.Validate(); err != nil {
		return Result{}, err
	}
	ctx = services.WithSessionID(ctx, job.SessionID)
	logger := logging.NewComponentLogger(p.Logger, "pipeline")

	framerate := job.Framerate
	if framerate <= 0 {
		framerate = DefaultFramerate
	}

	started := time.Now()
	var result Result

	err := p.run(ctx, logger, StepKeyframe, func(stepCtx context.Context) error {
		dialect, err := p.Normalizer.Normalize(stepCtx, job.Paths.Output, job.Paths.Working, framerate)
		result.Transcoder = dialect.Binary
		return err
	})
	if err != nil {
		return result, err
	}

	err = p.run(ctx, logger, StepDuration, func(stepCtx context.Context) error {
		raw, err := p.Prober.Probe(stepCtx, job.Paths.Working)
		if err != nil {
			return err
		}
		if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
			return services.Wrap(services.ErrParse, "duration", "", "probe reported an unusable duration", nil)
		}
		result.RawDuration = raw
		result.Duration = int(math.Round(raw))
		return nil
	})
	if err != nil {
		return result, err
	}

	err = p.run(ctx, logger, StepCuepoints, func(context.Context) error {
		if err := cuepoint.WriteFile(job.Paths.Cuepoints, result.Duration); err != nil {
			return err
		}
		result.Cuepoints = result.Duration
		return nil
	})
	if err != nil {
		return result, err
	}

	err = p.run(ctx, logger, StepInject, func(stepCtx context.Context) error {
		return p.Injector.Inject(stepCtx, job.Paths.Cuepoints, job.Paths.Working, job.Paths.Output)
	})
	if err != nil {
		return result, err
	}

	err = p.run(ctx, logger, StepCleanup, func(stepCtx context.Context) error {
		return p.cleanup(stepCtx, logger, job.Paths)
	})
	if err != nil {
		return result, err
	}

	result.Elapsed = time.Since(started)
	logging.WithContext(ctx, logger).Info(
		"post-process completed",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("output", job.Paths.Output),
		logging.Int("duration_seconds", result.Duration),
		logging.String("transcoder", result.Transcoder),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (p *Processor) removeFunc() func(string) error {
	if p.remove != nil {
		return p.remove
	}
	return os.Remove
}
