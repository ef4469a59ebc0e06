package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

const dateLayout = "2006-01-02"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	sourcesOnce sync.Once
	sources     []config.Source
	sourcesErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureSources() ([]config.Source, error) {
	c.sourcesOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.sourcesErr = err
			return
		}
		c.sources, c.sourcesErr = config.LoadSources(cfg.Paths.SourcesFile)
	})
	return c.sources, c.sourcesErr
}

// ensureLogger builds the console logger. The --log-level flag wins over the
// configured level.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       c.logLevel(),
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr"},
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		return strings.TrimSpace(*c.logLevelFlag)
	}
	if c.config != nil {
		return c.config.Logging.Level
	}
	return "info"
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// parseRunDate resolves the --date flag; an empty value means today.
func parseRunDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	date, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", value)
	}
	return date, nil
}
