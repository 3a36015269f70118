package config

import (
	"fmt"
	"strings"

	"castro/internal/paths"
)

func (c *Config) normalize() error {
	if err := c.normalizeRecording(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeHistory()
}

func (c *Config) normalizeRecording() error {
	c.Recording.Filename = strings.TrimSpace(c.Recording.Filename)
	if c.Recording.Filename == "" {
		c.Recording.Filename = defaultFilename
	}
	c.Recording.Host = strings.TrimSpace(c.Recording.Host)
	if c.Recording.Host == "" {
		c.Recording.Host = defaultHost
	}
	c.Recording.Clipping = strings.TrimSpace(c.Recording.Clipping)
	c.Recording.Command = strings.TrimSpace(c.Recording.Command)
	if c.Recording.Command == "" {
		c.Recording.Command = defaultCaptureCommand
	}

	var err error
	if c.Recording.PasswordFile, err = expandPath(strings.TrimSpace(c.Recording.PasswordFile)); err != nil {
		return fmt.Errorf("recording.password_file: %w", err)
	}
	dataDir := paths.ResolveDataDir(c.Recording.DataDir)
	if c.Recording.DataDir, err = expandPath(dataDir); err != nil {
		return fmt.Errorf("recording.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	transcoders := make([]string, 0, len(c.Tools.Transcoders))
	for _, name := range c.Tools.Transcoders {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			transcoders = append(transcoders, trimmed)
		}
	}
	c.Tools.Transcoders = transcoders

	c.Tools.Probe = strings.TrimSpace(c.Tools.Probe)
	if c.Tools.Probe == "" {
		c.Tools.Probe = defaultProbe
	}
	c.Tools.Inject = strings.TrimSpace(c.Tools.Inject)
	if c.Tools.Inject == "" {
		c.Tools.Inject = defaultInject
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.ProbeBackend = strings.ToLower(strings.TrimSpace(c.Tools.ProbeBackend))
	if c.Tools.ProbeBackend == "" {
		c.Tools.ProbeBackend = ProbeBackendFlvtool
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}
