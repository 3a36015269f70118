// Package paths derives the working directory and artifact locations for a
// recording session.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"castro/internal/services"
)

// EnvDataDir overrides the data directory when no explicit value is supplied.
const EnvDataDir = "CASTRO_DATA_DIR"

// DefaultFilename is used when a session is configured without a filename.
const DefaultFilename = "castro-video.swf"

const (
	workingPrefix   = "temp-"
	cuepointsSuffix = "-cuepoints.xml"
)

// Set holds the artifact paths owned by one session.
type Set struct {
	DataDir   string
	Output    string
	Working   string
	Cuepoints string
}

// ResolveDataDir picks the explicit directory, then CASTRO_DATA_DIR, then the
// platform temp directory.
func ResolveDataDir(explicit string) string {
	if dir := strings.TrimSpace(explicit); dir != "" {
		return dir
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Resolve derives the output, working, and cuepoint paths for filename.
func Resolve(filename, dataDir string) Set {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = DefaultFilename
	}
	dir := ResolveDataDir(dataDir)
	return Set{
		DataDir:   dir,
		Output:    filepath.Join(dir, filename),
		Working:   filepath.Join(dir, workingPrefix+filename),
		Cuepoints: filepath.Join(dir, filename+cuepointsSuffix),
	}
}

// Validate reports an error when any two artifact paths collide.
func (s Set) Validate() error {
	if s.Output == "" {
		return services.Wrap(services.ErrConfiguration, "paths", "validate", "output path is empty", nil)
	}
	pairs := [][2]string{
		{s.Output, s.Working},
		{s.Output, s.Cuepoints},
		{s.Working, s.Cuepoints},
	}
	for _, pair := range pairs {
		if filepath.Clean(pair[0]) == filepath.Clean(pair[1]) {
			return services.Wrap(services.ErrConfiguration, "paths", "validate", fmt.Sprintf("artifact path collision: %s", pair[0]), nil)
		}
	}
	return nil
}
