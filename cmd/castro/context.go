package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"castro/internal/config"
	"castro/internal/history"
	"castro/internal/logging"
	"castro/internal/services"
	"castro/internal/toolexec"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds a logger from the loaded config. Quiet recordings only log
// warnings unless --log-level says otherwise.
func (c *commandContext) logger(stderr io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if cfg.Recording.Quiet {
		level = "warn"
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = strings.TrimSpace(*c.logLevelFlag)
	}
	if strings.TrimSpace(cfg.Logging.Dir) != "" {
		copyCfg := *cfg
		copyCfg.Logging.Level = level
		return logging.NewFromConfig(&copyCfg)
	}
	return logging.NewWithWriter(stderr, logging.Options{Level: level, Format: cfg.Logging.Format})
}

func (c *commandContext) runner(cmd *cobra.Command) toolexec.Runner {
	cfg := c.configValue()
	return toolexec.ExecRunner{Quiet: cfg != nil && cfg.Recording.Quiet, Stderr: cmd.ErrOrStderr()}
}

// openHistory returns nil without error when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func formatError(err error) string {
	details := services.Details(err)
	if details.Kind == "" {
		return "Error: " + details.Message
	}
	return fmt.Sprintf("Error (%s): %s", details.Kind, details.Message)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
