package extract

import (
	"net/http"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
)

// BrowserOptions derives session options from configuration.
func BrowserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		Headless:  cfg.Extraction.Headless,
		Timeout:   cfg.BrowserTimeout(),
		UserAgent: cfg.Extraction.UserAgent,
	}
}

// NewFromConfig wires the production tiers. Options are applied after the
// defaults, so tests and callers can replace either tier list.
func NewFromConfig(cfg *config.Config, opts ...Option) *Extractor {
	ex := cfg.Extraction
	client := &http.Client{Timeout: cfg.HTTPTimeout()}
	bopts := BrowserOptions(cfg)

	all := []Option{
		WithVideoTiers(
			NewTranscriptAPITier(ex.TranscriptAPIURL, cfg.APIKeys.TranscriptAPI, ex.TranscriptRatePerSecond, client),
			NewCommunityTranscriptTier(DefaultWatchURL, ex.UserAgent, client),
			NewTranscriptScrapeTier(browser.Launch, bopts, ex.TranscriptToolURL),
		),
		WithPageTiers(NewPageScrapeTier(browser.Launch, bopts)),
	}
	all = append(all, opts...)
	return New(Settings{
		MinContentLength: ex.MinContentLength,
		MaxRetries:       ex.MaxRetries,
		RetryDelay:       cfg.RetryDelay(),
	}, all...)
}
