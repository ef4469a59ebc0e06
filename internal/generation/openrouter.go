package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

const (
	defaultOpenRouterURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
)

// OpenRouterConfig captures the settings needed to reach OpenRouter.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
}

// OpenRouterBackend wraps the OpenRouter chat completion API. Unlike the other
// backends it retries 408, 429, 5xx, timeouts and empty completions with
// capped exponential backoff, honouring Retry-After.
type OpenRouterBackend struct {
	cfg        OpenRouterConfig
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// OpenRouterOption customizes the backend.
type OpenRouterOption func(*OpenRouterBackend)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) OpenRouterOption {
	return func(b *OpenRouterBackend) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) OpenRouterOption {
	return func(b *OpenRouterBackend) {
		b.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) OpenRouterOption {
	return func(b *OpenRouterBackend) {
		b.retryBaseDelay = baseDelay
		b.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) OpenRouterOption {
	return func(b *OpenRouterBackend) {
		b.sleeper = sleeper
	}
}

// NewOpenRouterBackend constructs the backend.
func NewOpenRouterBackend(cfg OpenRouterConfig, opts ...OpenRouterOption) *OpenRouterBackend {
	b := &OpenRouterBackend{
		cfg: OpenRouterConfig{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Referer: strings.TrimSpace(cfg.Referer),
			Title:   strings.TrimSpace(cfg.Title),
		},
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cfg.BaseURL == "" {
		b.cfg.BaseURL = defaultOpenRouterURL
	}
	return b
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("openrouter request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type emptyContentError struct {
	FinishReason string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("openrouter: empty content (finish_reason=%q, response_snippet=%s)", e.FinishReason, e.Snippet)
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		// Some providers return the streaming schema even when stream=false.
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Backend.
func (b *OpenRouterBackend) Generate(ctx context.Context, prompt, model string) (string, error) {
	if b.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "generation", "openrouter", "api key required", nil)
	}
	payload := chatCompletionRequest{
		Model:       strings.TrimSpace(model),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	}

	attempts := b.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		completion, body, err := b.sendOnce(ctx, payload)
		if err == nil {
			content, finishReason := extractCompletion(completion)
			if content != "" {
				return content, nil
			}
			err = &emptyContentError{FinishReason: finishReason, Snippet: summarizePayloadSnippet(string(body))}
		}

		delay, retry := b.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return "", services.Wrap(classifyOpenRouterError(err), "generation", "openrouter", "chat completion", err)
		}
		if err := b.sleep(ctx, delay); err != nil {
			return "", err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", services.Wrap(services.ErrTransient, "generation", "openrouter",
		fmt.Sprintf("failed after %d attempts", attempts), lastErr)
}

func classifyOpenRouterError(err error) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode)
	}
	return services.ErrTransient
}

func extractCompletion(completion chatCompletionResponse) (string, string) {
	var finishReason string
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		for _, candidate := range []string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if trimmed := strings.TrimSpace(candidate); trimmed != "" {
				return trimmed, finishReason
			}
		}
	}
	return "", finishReason
}

func (b *OpenRouterBackend) sendOnce(ctx context.Context, payload chatCompletionRequest) (chatCompletionResponse, []byte, error) {
	var completion chatCompletionResponse
	endpoint, err := url.JoinPath(b.cfg.BaseURL, "")
	if err != nil {
		return completion, nil, fmt.Errorf("openrouter request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return completion, nil, fmt.Errorf("openrouter request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return completion, nil, fmt.Errorf("openrouter request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", b.cfg.Referer)
	}
	if b.cfg.Title != "" {
		req.Header.Set("X-Title", b.cfg.Title)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return completion, nil, fmt.Errorf("openrouter request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion, nil, fmt.Errorf("openrouter request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return completion, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return completion, body, fmt.Errorf("openrouter request: decode response: %w", err)
	}
	if completion.Error != nil {
		return completion, body, fmt.Errorf("openrouter request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	return completion, body, nil
}

func (b *OpenRouterBackend) retryAttempts() int {
	if b.retryMaxAttempts <= 0 {
		return 1
	}
	return b.retryMaxAttempts
}

func (b *OpenRouterBackend) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return b.backoffDelay(attempt), true
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return b.capDelay(statusErr.RetryAfter), true
			}
			return b.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return b.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from the base delay per attempt: base, base*2, base*4.
func (b *OpenRouterBackend) backoffDelay(attempt int) time.Duration {
	base := b.retryBaseDelay
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}
	maxDelay := b.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return b.capDelay(delay)
}

func (b *OpenRouterBackend) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := b.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (b *OpenRouterBackend) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if b.sleeper != nil {
		b.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
