package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeExtraction()
	c.normalizeGeneration()
	c.normalizeModels()
	c.normalizeAPIKeys()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.SourcesFile, err = expandPath(strings.TrimSpace(c.Paths.SourcesFile)); err != nil {
		return fmt.Errorf("paths.sources_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.TranscriptAPIURL = strings.TrimSpace(c.Extraction.TranscriptAPIURL)
	if c.Extraction.TranscriptAPIURL == "" {
		c.Extraction.TranscriptAPIURL = defaultTranscriptAPIURL
	}
	c.Extraction.TranscriptToolURL = strings.TrimSpace(c.Extraction.TranscriptToolURL)
	if c.Extraction.TranscriptToolURL == "" {
		c.Extraction.TranscriptToolURL = defaultTranscriptToolURL
	}
	c.Extraction.UserAgent = strings.TrimSpace(c.Extraction.UserAgent)
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeGeneration() {
	c.Generation.PoeAPIKey = envFallback(c.Generation.PoeAPIKey, "POE_API_KEY")
	c.Generation.OpenRouterAPIKey = envFallback(c.Generation.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	c.Generation.PoeBaseURL = strings.TrimRight(strings.TrimSpace(c.Generation.PoeBaseURL), "/")
	if c.Generation.PoeBaseURL == "" {
		c.Generation.PoeBaseURL = defaultPoeBaseURL
	}
	c.Generation.OllamaURL = strings.TrimRight(strings.TrimSpace(c.Generation.OllamaURL), "/")
	if c.Generation.OllamaURL == "" {
		c.Generation.OllamaURL = defaultOllamaURL
	}
	c.Generation.OpenRouterBaseURL = strings.TrimSpace(c.Generation.OpenRouterBaseURL)
	if c.Generation.OpenRouterBaseURL == "" {
		c.Generation.OpenRouterBaseURL = defaultOpenRouterBaseURL
	}
	c.Generation.Referer = strings.TrimSpace(c.Generation.Referer)
	c.Generation.Title = strings.TrimSpace(c.Generation.Title)
}

func (c *Config) normalizeModels() {
	for _, ref := range []*ModelRef{
		&c.Models.MainstreamNarrative,
		&c.Models.GeopoliticalLedger,
		&c.Models.IntelBrief,
		&c.Models.MaterialistAnalysis,
		&c.Models.GlobalBriefing,
		&c.Models.MultiLens,
		&c.Models.Categoriser,
	} {
		ref.Provider = strings.ToLower(strings.TrimSpace(ref.Provider))
		ref.Model = strings.TrimSpace(ref.Model)
	}
}

func (c *Config) normalizeAPIKeys() {
	c.APIKeys.YouTube = envFallback(c.APIKeys.YouTube, "YOUTUBE_API_KEY")
	c.APIKeys.TranscriptAPI = envFallback(c.APIKeys.TranscriptAPI, "TRANSCRIPT_API_TOKEN")
}

// envFallback returns value trimmed, or the named environment variable when
// value is blank or the "xxx" placeholder shipped in sample files.
func envFallback(value, env string) string {
	value = strings.TrimSpace(value)
	if value != "" && !strings.EqualFold(value, "xxx") {
		return value
	}
	if fromEnv, ok := os.LookupEnv(env); ok {
		return strings.TrimSpace(fromEnv)
	}
	return ""
}
