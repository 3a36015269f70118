package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"castro/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
	stubbed bool
}

// NewConfig produces a config seeded with unique temp directories per test.
// The data directory exists, the VNC password file is unset, and history
// lives under the temp root. Stub binaries requested through options are
// placed first on PATH.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Recording.DataDir = filepath.Join(base, "data")
	cfgVal.Recording.PasswordFile = ""
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	if err := os.MkdirAll(cfgVal.Recording.DataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if builder.stubbed {
		t.Setenv("PATH", BinDir(builder.cfg)+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	return builder.cfg
}

// WithHistoryDisabled turns off the history database.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries installs `exit 0` stubs for names. With no names the
// capture tool, ffmpeg, and flvtool2 are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"vnc2swf", "ffmpeg", "flvtool2"}
		}
		for _, name := range names {
			WriteStub(b.t, filepath.Join(b.baseDir, "bin"), name, "#!/bin/sh\nexit 0\n")
		}
		b.stubbed = true
	}
}

// WithStubScript installs a stub executable running the given shell script.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		WriteStub(b.t, filepath.Join(b.baseDir, "bin"), name, script)
		b.stubbed = true
	}
}

// WriteStub writes an executable script named name into dir.
func WriteStub(t testing.TB, dir, name, script string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

// WriteConfig encodes cfg to castro.toml under the temp root and returns the path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "castro.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Recording.DataDir)
}

// BinDir is where stub binaries for cfg are written.
func BinDir(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "bin")
}
