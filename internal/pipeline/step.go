package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"castro/internal/logging"
	"castro/internal/services"
)

const scope = "post-process"

// run executes one step with start/complete/failure logging and wraps any
// failure so the message names the step.
func (p *Processor) run(ctx context.Context, logger *slog.Logger, step Step, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTimeout, scope, string(step), "cancelled before start", err)
	}

	stepCtx := services.WithStep(ctx, string(step))
	stepLogger := logging.WithContext(stepCtx, logger)
	stepLogger.Info("step started", logging.String(logging.FieldEventType, "step_start"))

	started := time.Now()
	if err := fn(stepCtx); err != nil {
		wrapped := wrapStepError(step, err)
		details := services.Details(wrapped)
		stepLogger.Error(
			"step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.String("error_kind", details.Kind),
			logging.String("error_message", strings.TrimSpace(details.Message)),
			logging.Duration("elapsed", time.Since(started)),
		)
		return wrapped
	}

	stepLogger.Info(
		"step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func wrapStepError(step Step, err error) error {
	marker := services.MarkerOf(err)
	if marker == nil {
		marker = services.ErrToolExecution
	}
	return services.Wrap(marker, scope, string(step), "", err)
}
