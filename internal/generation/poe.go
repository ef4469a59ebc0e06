package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// PoeBackend talks to Poe's OpenAI-compatible chat completions API.
type PoeBackend struct {
	client *openai.Client
}

// NewPoeBackend constructs a Poe backend.
func NewPoeBackend(apiKey, baseURL string, httpClient *http.Client) *PoeBackend {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &PoeBackend{client: openai.NewClientWithConfig(cfg)}
}

// Generate implements Backend.
func (p *PoeBackend) Generate(ctx context.Context, prompt, model string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", services.Wrap(classifyOpenAIError(err), "generation", "poe", "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrTransient, "generation", "poe", "no choices returned", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrTransient, "generation", "poe",
			"empty content (finish_reason="+string(resp.Choices[0].FinishReason)+")", nil)
	}
	return content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	return services.ErrTransient
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return services.ErrConfiguration
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return services.ErrTransient
	case code >= http.StatusBadRequest:
		return services.ErrDeterministic
	default:
		return services.ErrTransient
	}
}
