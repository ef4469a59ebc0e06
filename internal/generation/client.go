package generation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// Provider names a generation backend.
type Provider string

const (
	Poe        Provider = "poe"
	Ollama     Provider = "ollama"
	OpenRouter Provider = "openrouter"
)

// Backend produces text for a prompt using the named model.
type Backend interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Client dispatches prompts to the backend registered for a provider.
type Client struct {
	backends map[Provider]Backend
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// Option customizes the client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "generation")
	}
}

// WithMetrics records every call on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = rec
	}
}

// New builds a client over an explicit backend table.
func New(backends map[Provider]Backend, opts ...Option) *Client {
	table := make(map[Provider]Backend, len(backends))
	for provider, backend := range backends {
		if backend != nil {
			table[provider] = backend
		}
	}
	c := &Client{backends: table, logger: logging.NewComponentLogger(nil, "generation")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds the provider table from configuration. Providers
// without credentials are omitted; ollama needs none.
func NewFromConfig(cfg config.Generation, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	httpClient := &http.Client{Timeout: timeout}
	backends := map[Provider]Backend{
		Ollama: NewOllamaBackend(cfg.OllamaURL, httpClient),
	}
	if cfg.PoeAPIKey != "" {
		backends[Poe] = NewPoeBackend(cfg.PoeAPIKey, cfg.PoeBaseURL, httpClient)
	}
	if cfg.OpenRouterAPIKey != "" {
		backends[OpenRouter] = NewOpenRouterBackend(OpenRouterConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Referer: cfg.Referer,
			Title:   cfg.Title,
		}, WithHTTPClient(httpClient))
	}
	return New(backends, opts...)
}

// Providers lists the registered providers in sorted order.
func (c *Client) Providers() []Provider {
	out := make([]Provider, 0, len(c.backends))
	for provider := range c.backends {
		out = append(out, provider)
	}
	slices.Sort(out)
	return out
}

// Generate sends prompt to model on provider and returns the trimmed text.
func (c *Client) Generate(ctx context.Context, prompt string, provider Provider, model string) (string, error) {
	provider = Provider(strings.ToLower(strings.TrimSpace(string(provider))))
	backend, ok := c.backends[provider]
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, "generation", string(provider),
			fmt.Sprintf("provider %q is not configured", provider), nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "generation", string(provider), "prompt is empty", nil)
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("generation request",
		logging.String("provider", string(provider)),
		logging.String("model", model),
		logging.Int("prompt_chars", len(prompt)),
		logging.Int("prompt_tokens_est", len(prompt)/4),
	)

	started := time.Now()
	text, err := backend.Generate(ctx, prompt, model)
	elapsed := time.Since(started)
	c.metrics.GenerationCall(string(provider), elapsed, err)
	if err != nil {
		logger.Warn("generation failed",
			logging.String(logging.FieldEventType, "generation_failed"),
			logging.String("provider", string(provider)),
			logging.String("model", model),
			logging.Duration("duration", elapsed),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "caller decides between placeholder and abort"),
		)
		return "", err
	}
	logger.Debug("generation response",
		logging.String("provider", string(provider)),
		logging.Int("response_chars", len(text)),
		logging.Duration("duration", elapsed),
	)
	return strings.TrimSpace(text), nil
}
