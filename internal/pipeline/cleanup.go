package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"castro/internal/logging"
	"castro/internal/paths"
	"castro/internal/services"
)

// cleanup removes the cuepoint document and the working file. A file that is
// already gone is logged and skipped so reruns succeed.
func (p *Processor) cleanup(ctx context.Context, logger *slog.Logger, set paths.Set) error {
	remove := p.removeFunc()
	stepLogger := logging.WithContext(ctx, logger)
	for _, target := range []string{set.Cuepoints, set.Working} {
		err := remove(target)
		switch {
		case err == nil:
			stepLogger.Debug("removed intermediate file", logging.String("path", target))
		case errors.Is(err, fs.ErrNotExist):
			stepLogger.Warn(
				"intermediate file already absent",
				logging.String(logging.FieldEventType, "cleanup_missing"),
				logging.String("path", target),
			)
		default:
			return services.Wrap(services.ErrFilesystem, "cleanup", "remove", target, err)
		}
	}
	return nil
}
