package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "outputs")
	cfgVal.Paths.InputDir = filepath.Join(base, "inputs")
	cfgVal.Paths.SourcesFile = filepath.Join(base, "sources.yaml")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Format = "json"
	cfgVal.Extraction.RetryDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSampleSources writes the bundled sample sources file next to the config.
func WithSampleSources() ConfigOption {
	return func(b *configBuilder) {
		if err := config.CreateSampleSources(b.cfg.Paths.SourcesFile); err != nil {
			b.t.Fatalf("write sample sources: %v", err)
		}
	}
}

// WithSources writes the given sources as the sources file.
func WithSources(sources ...config.Source) ConfigOption {
	return func(b *configBuilder) {
		WriteSources(b.t, b.cfg.Paths.SourcesFile, sources)
	}
}

// WithGenerationKeys fills provider credentials so nothing is reported missing.
func WithGenerationKeys() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.PoeAPIKey = "test"
		b.cfg.Generation.OpenRouterAPIKey = "test"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
