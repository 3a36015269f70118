package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"castro/internal/config"
	"castro/internal/deps"
	"castro/internal/media/flvtool"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableFile verifies that path is a regular file the current user can read.
func CheckReadableFile(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// Requirements lists the external binaries the configured pipeline needs.
// The duration probe is only required for the flvtool2 and ffprobe backends.
func Requirements(cfg *config.Config) []deps.Requirement {
	transcoders := cfg.Tools.Transcoders
	var primary string
	var alternatives []string
	if len(transcoders) > 0 {
		primary = transcoders[0]
		alternatives = transcoders[1:]
	}

	requirements := []deps.Requirement{
		{
			Name:        "Capture",
			Command:     cfg.Recording.Command,
			Description: "Records the VNC display",
		},
		{
			Name:         "Transcoder",
			Command:      primary,
			Alternatives: alternatives,
			Description:  "Required for keyframe normalization",
		},
		{
			Name:        "Injector",
			Command:     defaultString(cfg.Tools.Inject, flvtool.DefaultBinary),
			Description: "Required for cuepoint injection",
		},
	}
	switch cfg.Tools.ProbeBackend {
	case config.ProbeBackendFFprobe:
		requirements = append(requirements, deps.Requirement{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for duration probing",
		})
	case config.ProbeBackendNative:
	default:
		requirements = append(requirements, deps.Requirement{
			Name:        "Probe",
			Command:     defaultString(cfg.Tools.Probe, flvtool.DefaultBinary),
			Description: "Required for duration probing",
		})
	}
	return requirements
}

// CheckSystemDeps evaluates all binary requirements for cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
