// Package browser wraps headless Chrome sessions for the scrape tiers and the
// title resolver.
package browser

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// DefaultTimeout bounds a single page interaction when Options.Timeout is zero.
const DefaultTimeout = 60 * time.Second

const pollInterval = 500 * time.Millisecond

// Options configures a browser session.
type Options struct {
	Headless  bool
	Timeout   time.Duration
	UserAgent string
}

// Page is the browser surface the scrape tiers and title resolver drive.
type Page interface {
	// Navigate loads url and waits for the document body to exist.
	Navigate(ctx context.Context, url string) error
	// TranscriptText submits videoURL to the transcript tool at toolURL and
	// returns the raw transcript text, timestamps included.
	TranscriptText(ctx context.Context, toolURL, videoURL string) (string, error)
	// OuterHTML loads url, waits for visible body text and returns the
	// rendered document.
	OuterHTML(ctx context.Context, url string) (string, error)
	// ElementText loads url and returns the text of the first element
	// matching the CSS selector.
	ElementText(ctx context.Context, url, selector string) (string, error)
	// Close tears the session down. It is safe to call more than once.
	Close()
}

// Opener starts a new Page.
type Opener func(ctx context.Context, opts Options) (Page, error)

// Session is a chromedp-backed Page owning its own browser process.
type Session struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// Launch is the production Opener.
func Launch(ctx context.Context, opts Options) (Page, error) {
	return NewSession(ctx, opts)
}

// NewSession starts an isolated browser process bound to parent. The
// browser exits when parent is cancelled or Close is called.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", opts.Headless),
	)
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(ua))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, services.Wrap(services.ErrExternalTool, "browser", "launch", "start chrome", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		timeout:     timeout,
	}, nil
}

// Close cancels the tab and the browser allocator.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.tabCancel != nil {
		s.tabCancel()
		s.tabCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
}

// Navigate loads url.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, "navigate",
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// TranscriptText drives the transcript tool form.
func (s *Session) TranscriptText(ctx context.Context, toolURL, videoURL string) (string, error) {
	var (
		text   string
		ready  bool
		loaded bool
	)
	err := s.run(ctx, "transcript",
		chromedp.Navigate(toolURL),
		chromedp.WaitVisible(`#yt-2`, chromedp.ByQuery),
		chromedp.SendKeys(`#yt-2`, videoURL, chromedp.ByQuery),
		chromedp.Click(`//input[@value='Get Video Transcript']`, chromedp.BySearch),
		chromedp.Poll(`window.location.href.includes("run/youtube_transcript")`, &loaded,
			chromedp.WithPollingInterval(pollInterval), chromedp.WithPollingTimeout(s.timeout)),
		chromedp.Poll(nonEmptyTextJS(`#transcript`), &ready,
			chromedp.WithPollingInterval(pollInterval), chromedp.WithPollingTimeout(s.timeout)),
		chromedp.Text(`#transcript`, &text, chromedp.ByQuery),
	)
	return text, err
}

// OuterHTML returns the rendered document once body text is present.
func (s *Session) OuterHTML(ctx context.Context, url string) (string, error) {
	var (
		doc   string
		ready bool
	)
	err := s.run(ctx, "page source",
		chromedp.Navigate(url),
		chromedp.Poll(nonEmptyTextJS(`body`), &ready,
			chromedp.WithPollingInterval(pollInterval), chromedp.WithPollingTimeout(s.timeout)),
		chromedp.OuterHTML(`html`, &doc, chromedp.ByQuery),
	)
	return doc, err
}

// ElementText returns the trimmed text of selector on url.
func (s *Session) ElementText(ctx context.Context, url, selector string) (string, error) {
	var (
		text  string
		ready bool
	)
	err := s.run(ctx, "element text",
		chromedp.Navigate(url),
		chromedp.Poll(nonEmptyTextJS(selector), &ready,
			chromedp.WithPollingInterval(pollInterval), chromedp.WithPollingTimeout(s.timeout)),
		chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.NodeVisible),
	)
	return strings.TrimSpace(text), err
}

// run executes actions under the per-interaction deadline. Cancelling ctx
// aborts the actions without closing the session.
func (s *Session) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	if s == nil || s.ctx == nil {
		return services.Wrap(services.ErrExternalTool, "browser", op, "session closed", nil)
	}
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "browser", op, "no result within "+s.timeout.String(), err)
	}
	return services.Wrap(services.ErrExternalTool, "browser", op, "", err)
}

func nonEmptyTextJS(selector string) string {
	return `(() => { const el = document.querySelector(` + strconv.Quote(selector) +
		`); return !!el && el.innerText.trim().length > 0; })()`
}
