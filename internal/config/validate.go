package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"castro/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRecording(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "Invalid configuration", err)
	}
	if err := c.validateTools(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "Invalid configuration", err)
	}
	if err := c.validateLogging(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "Invalid configuration", err)
	}
	return nil
}

func (c *Config) validateRecording() error {
	if strings.ContainsAny(c.Recording.Filename, `/\`) || filepath.Base(c.Recording.Filename) != c.Recording.Filename {
		return fmt.Errorf("recording.filename must be a bare file name, got %q", c.Recording.Filename)
	}
	if c.Recording.Display < 0 {
		return errors.New("recording.display must be >= 0")
	}
	if c.Recording.Framerate < 0 {
		return errors.New("recording.framerate must be >= 0")
	}
	if c.Recording.Port < 0 || c.Recording.Port > 65535 {
		return errors.New("recording.port must be between 0 and 65535")
	}
	if c.Recording.StopGraceSeconds < 0 {
		return errors.New("recording.stop_grace_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateTools() error {
	if len(c.Tools.Transcoders) == 0 {
		return errors.New("tools.transcoders must name at least one binary")
	}
	switch c.Tools.ProbeBackend {
	case ProbeBackendFlvtool, ProbeBackendFFprobe, ProbeBackendNative:
	default:
		return fmt.Errorf("tools.probe_backend: unsupported value %q (want %s, %s or %s)",
			c.Tools.ProbeBackend, ProbeBackendFlvtool, ProbeBackendFFprobe, ProbeBackendNative)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
