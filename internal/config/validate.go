package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Providers lists the generation providers the pipeline knows how to reach.
var Providers = []string{"poe", "ollama", "openrouter"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateTitleFetch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SourcesFile) == "" {
		return errors.New("paths.sources_file must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.MinContentLength <= 0 {
		return errors.New("extraction.min_content_length must be positive")
	}
	if c.Extraction.MaxRetries < 0 {
		return errors.New("extraction.max_retries must be zero or greater")
	}
	if c.Extraction.RetryDelaySeconds < 0 {
		return errors.New("extraction.retry_delay_seconds must be zero or greater")
	}
	if c.Extraction.BrowserTimeoutSeconds <= 0 {
		return errors.New("extraction.browser_timeout_seconds must be positive")
	}
	if c.Extraction.HTTPTimeoutSeconds <= 0 {
		return errors.New("extraction.http_timeout_seconds must be positive")
	}
	if c.Extraction.TranscriptRatePerSecond <= 0 {
		return errors.New("extraction.transcript_rate_per_second must be positive")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.TimeoutSeconds <= 0 {
		return errors.New("generation.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateModels() error {
	all := c.Models.All()
	for _, step := range slices.Sorted(maps.Keys(all)) {
		ref := all[step]
		if !slices.Contains(Providers, ref.Provider) {
			return fmt.Errorf("models.%s.provider: unsupported value %q (want one of %s)", step, ref.Provider, strings.Join(Providers, ", "))
		}
		if ref.Model == "" {
			return fmt.Errorf("models.%s.model must be set", step)
		}
	}
	return nil
}

func (c *Config) validateTitleFetch() error {
	if c.TitleFetch.DriverResetThreshold <= 0 {
		return errors.New("title_fetch.driver_reset_threshold must be positive")
	}
	if c.TitleFetch.RequestTimeoutSeconds <= 0 {
		return errors.New("title_fetch.request_timeout_seconds must be positive")
	}
	if c.TitleFetch.PageWaitSeconds <= 0 {
		return errors.New("title_fetch.page_wait_seconds must be positive")
	}
	return nil
}
