package pipeline

import (
	"log/slog"

	"castro/internal/config"
	"castro/internal/media/ffprobe"
	"castro/internal/media/flvmeta"
	"castro/internal/media/flvtool"
	"castro/internal/toolexec"
	"castro/internal/transcode"
)

// NewFromConfig wires a Processor with the configured tools.
func NewFromConfig(cfg *config.Config, runner toolexec.Runner, logger *slog.Logger) *Processor {
	return &Processor{
		Normalizer: transcode.Normalizer{
			Runner: runner,
			Resolver: transcode.Resolver{
				Candidates: transcode.DialectsFor(cfg.Tools.Transcoders),
				Lookup:     toolexec.LookPath,
			},
		},
		Prober:   ProberFor(cfg, runner),
		Injector: flvtool.Injector{Runner: runner, Binary: cfg.Tools.Inject},
		Logger:   logger,
	}
}

// ProberFor returns the duration backend selected by tools.probe_backend.
func ProberFor(cfg *config.Config, runner toolexec.Runner) DurationProber {
	switch cfg.Tools.ProbeBackend {
	case config.ProbeBackendFFprobe:
		return ffprobe.Prober{Runner: runner, Binary: cfg.FFprobeBinary()}
	case config.ProbeBackendNative:
		return flvmeta.Prober{}
	default:
		return flvtool.Prober{Runner: runner, Binary: cfg.Tools.Probe}
	}
}
