package generation

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// OllamaBackend runs prompts against a local Ollama server. One langchaingo
// model handle is kept per model name.
type OllamaBackend struct {
	serverURL  string
	httpClient *http.Client

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewOllamaBackend constructs an Ollama backend.
func NewOllamaBackend(serverURL string, httpClient *http.Client) *OllamaBackend {
	return &OllamaBackend{
		serverURL:  strings.TrimSpace(serverURL),
		httpClient: httpClient,
		models:     make(map[string]llms.Model),
	}
}

func (o *OllamaBackend) model(name string) (llms.Model, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.models[name]; ok {
		return m, nil
	}
	opts := []ollama.Option{ollama.WithModel(name)}
	if o.serverURL != "" {
		opts = append(opts, ollama.WithServerURL(o.serverURL))
	}
	if o.httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(o.httpClient))
	}
	m, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	o.models[name] = m
	return m, nil
}

// Generate implements Backend.
func (o *OllamaBackend) Generate(ctx context.Context, prompt, model string) (string, error) {
	m, err := o.model(model)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "generation", "ollama", "init model "+model, err)
	}
	text, err := llms.GenerateFromSinglePrompt(ctx, m, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "generation", "ollama", "generate", err)
	}
	return strings.TrimSpace(text), nil
}
