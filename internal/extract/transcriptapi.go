package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// DefaultTranscriptAPIURL is the metered transcript service endpoint.
const DefaultTranscriptAPIURL = "https://www.youtube-transcript.io/api/transcripts"

// TranscriptAPITier is tier 0: a paid transcript service keyed by video id.
type TranscriptAPITier struct {
	endpoint string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
}

type transcriptAPIRequest struct {
	IDs []string `json:"ids"`
}

type transcriptAPIItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Tracks []struct {
		Language   string `json:"language"`
		Transcript []struct {
			Text string `json:"text"`
		} `json:"transcript"`
	} `json:"tracks"`
}

// NewTranscriptAPITier builds tier 0. perSecond limits request rate; zero or
// less disables the limiter.
func NewTranscriptAPITier(endpoint, token string, perSecond float64, client *http.Client) *TranscriptAPITier {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultTranscriptAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &TranscriptAPITier{
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Name identifies the tier in logs and metrics.
func (t *TranscriptAPITier) Name() string { return "transcript-api" }

// Fetch requests the transcript for url's video id.
func (t *TranscriptAPITier) Fetch(ctx context.Context, url string) (string, error) {
	if t.token == "" {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "transcript API token not configured", nil)
	}
	id, ok := VideoID(url)
	if !ok {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "no video id in url", nil)
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(transcriptAPIRequest{IDs: []string{id}})
	if err != nil {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "build request", err)
	}
	req.Header.Set("Authorization", "Basic "+t.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "request", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "read response", err)
	}
	if err := classifyHTTPStatus(t.Name(), resp.StatusCode); err != nil {
		return "", err
	}

	var items []transcriptAPIItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "decode response", err)
	}
	for _, item := range items {
		if item.ID != "" && item.ID != id {
			continue
		}
		if text := transcriptItemText(item); text != "" {
			return text, nil
		}
	}
	return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "no transcript for video "+id, nil)
}

func transcriptItemText(item transcriptAPIItem) string {
	if text := strings.TrimSpace(item.Text); text != "" {
		return text
	}
	for _, track := range item.Tracks {
		parts := make([]string, 0, len(track.Transcript))
		for _, seg := range track.Transcript {
			if s := strings.TrimSpace(seg.Text); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// classifyHTTPStatus maps a response status onto the failure classes. It
// returns nil for 2xx.
func classifyHTTPStatus(tier string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		return services.Wrap(services.ErrTransient, "extraction", tier, fmt.Sprintf("http %d", code), nil)
	default:
		return services.Wrap(services.ErrDeterministic, "extraction", tier, fmt.Sprintf("http %d", code), nil)
	}
}
