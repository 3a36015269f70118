package transcode

import (
	"context"
	"path/filepath"
	"strconv"

	"castro/internal/services"
	"castro/internal/toolexec"
)

// Normalizer rewrites a capture so it carries a keyframe every `framerate` frames.
type Normalizer struct {
	Runner   toolexec.Runner
	Resolver Resolver
}

// Args builds the transcoder argument list for d.
func (d Dialect) Args(input, output string, framerate int) []string {
	args := append([]string{}, d.QuietArgs...)
	return append(args,
		"-y",
		"-i", input,
		"-g", strconv.Itoa(framerate),
		output,
	)
}

// Normalize transcodes input into output. The two paths must differ: the
// transcoder cannot rewrite a file in place with -g.
func (n Normalizer) Normalize(ctx context.Context, input, output string, framerate int) (Dialect, error) {
	if filepath.Clean(input) == filepath.Clean(output) {
		return Dialect{}, services.Wrap(services.ErrValidation, "transcode", "keyframe", "input and output paths must differ", nil)
	}
	if framerate <= 0 {
		return Dialect{}, services.Wrap(services.ErrValidation, "transcode", "keyframe", "framerate must be positive", nil)
	}
	dialect, err := n.Resolver.Resolve()
	if err != nil {
		return Dialect{}, err
	}
	_, err = n.Runner.Run(ctx, toolexec.Command{
		Name: dialect.Binary,
		Args: dialect.Args(input, output, framerate),
	})
	return dialect, err
}
