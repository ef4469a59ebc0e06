package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// DefaultTranscriptToolURL is the third-party transcript page driven by tier 2.
const DefaultTranscriptToolURL = "https://tactiq.io/tools/youtube-transcript"

var timestampPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3}\s*`)

// TranscriptScrapeTier is tier 2: a fresh browser session per attempt drives
// the transcript tool form.
type TranscriptScrapeTier struct {
	open    browser.Opener
	opts    browser.Options
	toolURL string
}

// NewTranscriptScrapeTier builds tier 2. A nil opener launches Chrome.
func NewTranscriptScrapeTier(open browser.Opener, opts browser.Options, toolURL string) *TranscriptScrapeTier {
	if open == nil {
		open = browser.Launch
	}
	if strings.TrimSpace(toolURL) == "" {
		toolURL = DefaultTranscriptToolURL
	}
	return &TranscriptScrapeTier{open: open, opts: opts, toolURL: toolURL}
}

// Name identifies the tier in logs and metrics.
func (t *TranscriptScrapeTier) Name() string { return "transcript-scrape" }

// Fetch returns the transcript with timestamps removed.
func (t *TranscriptScrapeTier) Fetch(ctx context.Context, url string) (string, error) {
	page, err := t.open(ctx, t.opts)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", t.Name(), "open browser", err)
	}
	defer page.Close()

	raw, err := page.TranscriptText(ctx, t.toolURL, url)
	if err != nil {
		return "", err
	}
	return StripTimestamps(raw), nil
}

// PageScrapeTier loads a web page in a fresh browser session and reduces the
// rendered document to text.
type PageScrapeTier struct {
	open browser.Opener
	opts browser.Options
}

// NewPageScrapeTier builds the page tier. A nil opener launches Chrome.
func NewPageScrapeTier(open browser.Opener, opts browser.Options) *PageScrapeTier {
	if open == nil {
		open = browser.Launch
	}
	return &PageScrapeTier{open: open, opts: opts}
}

// Name identifies the tier in logs and metrics.
func (t *PageScrapeTier) Name() string { return "page-scrape" }

// Fetch returns the cleaned body text of url.
func (t *PageScrapeTier) Fetch(ctx context.Context, url string) (string, error) {
	page, err := t.open(ctx, t.opts)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", t.Name(), "open browser", err)
	}
	defer page.Close()

	doc, err := page.OuterHTML(ctx, url)
	if err != nil {
		return "", err
	}
	return CleanHTML(doc), nil
}

// StripTimestamps removes HH:MM:SS.mmm markers from transcript text.
func StripTimestamps(text string) string {
	return strings.TrimSpace(timestampPattern.ReplaceAllString(text, ""))
}
