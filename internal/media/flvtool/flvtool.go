// Package flvtool wraps the flvtool2 binary: duration probing through its
// YAML metadata dump and cuepoint injection.
package flvtool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"castro/internal/services"
	"castro/internal/toolexec"
)

// DefaultBinary is the flvtool2 executable name.
const DefaultBinary = "flvtool2"

// Prober reads the duration field from `flvtool2 -P`.
type Prober struct {
	Runner toolexec.Runner
	Binary string
}

// Probe returns the duration in seconds reported for path.
func (p Prober) Probe(ctx context.Context, path string) (float64, error) {
	cmd := toolexec.Command{
		Name:    binaryOrDefault(p.Binary),
		Args:    []string{"-P", path},
		Capture: true,
	}
	output, err := p.Runner.Run(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return ParseDuration(output, path)
}

// ParseDuration extracts the duration from flvtool2's YAML output. The dump
// is keyed by file path; when path is not present the first entry is used.
func ParseDuration(output []byte, path string) (float64, error) {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(output, &doc); err != nil {
		return 0, services.Wrap(services.ErrParse, "flvtool2", "decode", "metadata output is not valid YAML", err)
	}
	if len(doc) == 0 {
		return 0, services.Wrap(services.ErrParse, "flvtool2", "decode", "metadata output is empty", nil)
	}

	meta, ok := doc[path]
	if !ok {
		keys := make([]string, 0, len(doc))
		for key := range doc {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		meta = doc[keys[0]]
	}

	raw, ok := meta["duration"]
	if !ok {
		return 0, services.Wrap(services.ErrParse, "flvtool2", "decode", "duration field missing", nil)
	}
	seconds, err := toFloat(raw)
	if err != nil {
		return 0, services.Wrap(services.ErrParse, "flvtool2", "decode", "duration field invalid", err)
	}
	if seconds < 0 {
		return 0, services.Wrap(services.ErrParse, "flvtool2", "decode", fmt.Sprintf("negative duration %v", seconds), nil)
	}
	return seconds, nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}

// Injector merges a cuepoint document into a container with `flvtool2 -AUt`.
type Injector struct {
	Runner toolexec.Runner
	Binary string
}

// Inject writes source plus the cuepoints as metadata to destination.
func (i Injector) Inject(ctx context.Context, cuepoints, source, destination string) error {
	for _, required := range []string{cuepoints, source} {
		if _, err := os.Stat(required); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return services.Wrap(services.ErrFilesystem, "flvtool2", "inject", fmt.Sprintf("%s is missing", filepath.Base(required)), err)
			}
			return services.Wrap(services.ErrFilesystem, "flvtool2", "inject", "stat "+required, err)
		}
	}
	_, err := i.Runner.Run(ctx, toolexec.Command{
		Name: binaryOrDefault(i.Binary),
		Args: []string{"-AUt", cuepoints, source, destination},
	})
	return err
}

func binaryOrDefault(binary string) string {
	if b := strings.TrimSpace(binary); b != "" {
		return b
	}
	return DefaultBinary
}
