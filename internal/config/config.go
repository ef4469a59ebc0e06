package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	InputDir    string `toml:"input_dir"`
	SourcesFile string `toml:"sources_file"`
	LogDir      string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Extraction tunes the tiered content extractor.
type Extraction struct {
	MinContentLength        int     `toml:"min_content_length"`
	MaxRetries              int     `toml:"max_retries"`
	RetryDelaySeconds       float64 `toml:"retry_delay_seconds"`
	BrowserTimeoutSeconds   int     `toml:"browser_timeout_seconds"`
	HTTPTimeoutSeconds      int     `toml:"http_timeout_seconds"`
	Headless                bool    `toml:"headless"`
	TranscriptRatePerSecond float64 `toml:"transcript_rate_per_second"`
	TranscriptAPIURL        string  `toml:"transcript_api_url"`
	TranscriptToolURL       string  `toml:"transcript_tool_url"`
	UserAgent               string  `toml:"user_agent"`
}

// Generation holds connection settings for the text-generation providers.
type Generation struct {
	PoeAPIKey         string `toml:"poe_api_key"`
	PoeBaseURL        string `toml:"poe_base_url"`
	OllamaURL         string `toml:"ollama_url"`
	OpenRouterAPIKey  string `toml:"openrouter_api_key"`
	OpenRouterBaseURL string `toml:"openrouter_base_url"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// ModelRef names a provider and a model understood by that provider.
type ModelRef struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
}

// Models selects the model used by each generating step.
type Models struct {
	MainstreamNarrative ModelRef `toml:"mainstream_narrative"`
	GeopoliticalLedger  ModelRef `toml:"geopolitical_ledger"`
	IntelBrief          ModelRef `toml:"intel_brief"`
	MaterialistAnalysis ModelRef `toml:"materialist_analysis"`
	GlobalBriefing      ModelRef `toml:"global_briefing"`
	MultiLens           ModelRef `toml:"multi_lens"`
	Categoriser         ModelRef `toml:"categoriser"`
}

// TitleFetch configures the automated title resolution pass.
type TitleFetch struct {
	DriverResetThreshold  int `toml:"driver_reset_threshold"`
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	PageWaitSeconds       int `toml:"page_wait_seconds"`
}

// APIKeys carries credentials for non-generation services.
type APIKeys struct {
	YouTube       string `toml:"youtube"`
	TranscriptAPI string `toml:"transcript_api"`
}

// Post controls the front matter of the assembled weekly post.
type Post struct {
	Layout      string `toml:"layout"`
	TitlePrefix string `toml:"title_prefix"`
	Categories  string `toml:"categories"`
	PublishTime string `toml:"publish_time"`
	UTCOffset   string `toml:"utc_offset"`
}

// Config encapsulates all configuration values for newshub.
//
// Configuration sections by subsystem:
//   - Paths: workspace root, link drop directory, sources file, logs
//   - Logging: log format and level
//   - Extraction: tier retry budget, thresholds, browser settings
//   - Generation: provider endpoints and credentials
//   - Models: provider/model pair per generating step
//   - TitleFetch: title resolution tuning
//   - APIKeys: YouTube Data API and transcript service credentials
//   - Post: weekly post front matter
type Config struct {
	Paths      Paths      `toml:"paths"`
	Logging    Logging    `toml:"logging"`
	Extraction Extraction `toml:"extraction"`
	Generation Generation `toml:"generation"`
	Models     Models     `toml:"models"`
	TitleFetch TitleFetch `toml:"title_fetch"`
	APIKeys    APIKeys    `toml:"api_keys"`
	Post       Post       `toml:"post"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env, ok := os.LookupEnv("NEWSHUB_CONFIG"); ok && strings.TrimSpace(env) != "" {
			path = strings.TrimSpace(env)
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigLocation)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("config.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.InputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RetryDelay returns the fixed wait between extraction attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Extraction.RetryDelaySeconds * float64(time.Second))
}

// BrowserTimeout bounds one browser extraction attempt.
func (c *Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Extraction.BrowserTimeoutSeconds) * time.Second
}

// HTTPTimeout bounds one HTTP request issued by an extraction tier.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Extraction.HTTPTimeoutSeconds) * time.Second
}

// GenerationTimeout bounds one generation call.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// LinksFile is where the operator pastes article links during collection.
func (c *Config) LinksFile() string {
	return filepath.Join(c.Paths.InputDir, "input_article_links.txt")
}

// MissingCredentials lists the providers and services referenced by the
// configuration that have no credential. It never fails Load: a provider
// without a key is simply unavailable at run time.
func (c *Config) MissingCredentials() []string {
	var missing []string
	seen := map[string]bool{}
	for _, ref := range c.Models.All() {
		provider := ref.Provider
		if seen[provider] {
			continue
		}
		seen[provider] = true
		switch provider {
		case "poe":
			if c.Generation.PoeAPIKey == "" {
				missing = append(missing, "generation.poe_api_key (POE_API_KEY)")
			}
		case "openrouter":
			if c.Generation.OpenRouterAPIKey == "" {
				missing = append(missing, "generation.openrouter_api_key (OPENROUTER_API_KEY)")
			}
		}
	}
	if c.APIKeys.YouTube == "" {
		missing = append(missing, "api_keys.youtube (YOUTUBE_API_KEY)")
	}
	if c.APIKeys.TranscriptAPI == "" {
		missing = append(missing, "api_keys.transcript_api (TRANSCRIPT_API_TOKEN)")
	}
	return missing
}

// All returns every configured model reference keyed by step name.
func (m Models) All() map[string]ModelRef {
	return map[string]ModelRef{
		"mainstream_narrative": m.MainstreamNarrative,
		"geopolitical_ledger":  m.GeopoliticalLedger,
		"intel_brief":          m.IntelBrief,
		"materialist_analysis": m.MaterialistAnalysis,
		"global_briefing":      m.GlobalBriefing,
		"multi_lens":           m.MultiLens,
		"categoriser":          m.Categoriser,
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	return writeSample(path, sampleConfig, "config")
}

func writeSample(path, content, label string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", label, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write sample %s: %w", label, err)
	}
	return nil
}
