package browser

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

// DefaultResetThreshold is the number of acquisitions a pooled session
// serves before it is replaced.
const DefaultResetThreshold = 25

// Pool shares one long-lived session across many page loads. The session is
// replaced after threshold acquisitions and whenever the requested headless
// mode differs from the running one, since a browser cannot switch modes.
type Pool struct {
	mu        sync.Mutex
	ctx       context.Context
	open      Opener
	opts      Options
	threshold int
	logger    *slog.Logger

	page     Page
	headless bool
	uses     int
	launches int
}

// NewPool builds a Pool whose sessions live until ctx is done or Close is
// called.
func NewPool(ctx context.Context, open Opener, opts Options, threshold int, logger *slog.Logger) *Pool {
	if open == nil {
		open = Launch
	}
	if threshold <= 0 {
		threshold = DefaultResetThreshold
	}
	return &Pool{
		ctx:       ctx,
		open:      open,
		opts:      opts,
		threshold: threshold,
		logger:    logging.NewComponentLogger(logger, "browser-pool"),
	}
}

// Acquire returns the shared page in the requested mode, launching a fresh
// session when required.
func (p *Pool) Acquire(headless bool) (Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.uses++
	reason := ""
	switch {
	case p.page == nil:
		reason = "no session"
	case p.uses > p.threshold:
		reason = "use threshold reached"
	case p.headless != headless:
		reason = "mode change"
	}
	if reason == "" {
		p.logger.Debug("reusing browser session",
			logging.Int("uses", p.uses),
			logging.Int("threshold", p.threshold),
		)
		return p.page, nil
	}

	p.closeLocked()
	opts := p.opts
	opts.Headless = headless
	page, err := p.open(p.ctx, opts)
	if err != nil {
		return nil, err
	}
	p.page = page
	p.headless = headless
	p.uses = 1
	p.launches++
	p.logger.Info("browser session started",
		logging.String("reason", reason),
		logging.Bool("headless", headless),
		logging.Int("launches", p.launches),
	)
	return page, nil
}

// Launches reports how many sessions the pool has started.
func (p *Pool) Launches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.launches
}

// Close shuts the current session down.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Pool) closeLocked() {
	if p.page != nil {
		p.page.Close()
		p.page = nil
	}
	p.uses = 0
}
