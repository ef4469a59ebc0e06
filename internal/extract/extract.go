// Package extract turns a source URL into plain text by walking an ordered
// list of tiers, each with its own bounded retry budget.
//
// Video URLs try the transcript API, then the public caption track, then the
// browser-driven transcript tool. Everything else is loaded in a browser and
// stripped to text. Extraction never fails loudly: when every tier is spent
// the caller receives an empty string and decides what to show instead.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/retry"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// DefaultMinContentLength applies when Settings leaves the threshold unset.
// A zero MaxRetries or RetryDelay is meaningful and kept as given.
const DefaultMinContentLength = 150

const errorSentinelPrefix = "[Error"

// Outcome classifies a single tier attempt.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeInsufficient  Outcome = "insufficient"
	OutcomeTransient     Outcome = "transient-error"
	OutcomeDeterministic Outcome = "deterministic-error"
)

// Attempt records one tier attempt. It is surfaced to logs, metrics and the
// optional observer; it is never persisted.
type Attempt struct {
	Tier    string
	Outcome Outcome
	Attempt int
	Length  int
	Err     error
}

// Tier fetches raw text for a URL. Implementations mark failures that would
// repeat identically with services.ErrDeterministic (or another
// deterministic marker) so the extractor moves on after one attempt.
type Tier interface {
	Name() string
	Fetch(ctx context.Context, url string) (string, error)
}

// Settings controls acceptance and the per-tier retry budget.
type Settings struct {
	MinContentLength int
	MaxRetries       int
	RetryDelay       time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.MinContentLength <= 0 {
		s.MinContentLength = DefaultMinContentLength
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.RetryDelay < 0 {
		s.RetryDelay = 0
	}
	return s
}

// Extractor walks the tier list for a URL family.
type Extractor struct {
	settings   Settings
	videoTiers []Tier
	pageTiers  []Tier
	logger     *slog.Logger
	metrics    *metrics.Recorder
	sleep      retry.Sleeper
	observe    func(Attempt)
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithMetrics records attempts and results on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(e *Extractor) {
		e.metrics = rec
	}
}

// WithVideoTiers replaces the tier list used for video URLs.
func WithVideoTiers(tiers ...Tier) Option {
	return func(e *Extractor) {
		e.videoTiers = tiers
	}
}

// WithPageTiers replaces the tier list used for every other URL.
func WithPageTiers(tiers ...Tier) Option {
	return func(e *Extractor) {
		e.pageTiers = tiers
	}
}

// WithSleeper overrides the wait between retries.
func WithSleeper(sleep retry.Sleeper) Option {
	return func(e *Extractor) {
		e.sleep = sleep
	}
}

// WithObserver receives every attempt after it is classified.
func WithObserver(fn func(Attempt)) Option {
	return func(e *Extractor) {
		e.observe = fn
	}
}

// New constructs an Extractor. Callers normally supply tiers through options;
// NewFromConfig wires the production set.
func New(settings Settings, opts ...Option) *Extractor {
	e := &Extractor{settings: settings.withDefaults()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "extractor")
	return e
}

// Settings returns the effective settings.
func (e *Extractor) Settings() Settings {
	return e.settings
}

// Text returns the extracted text for url, or "" once every tier has failed.
func (e *Extractor) Text(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	ctx = services.WithItemURL(ctx, url)
	logger := logging.WithContext(ctx, e.logger)

	family := FamilyOf(url)
	tiers := e.pageTiers
	if family == FamilyVideo {
		tiers = e.videoTiers
	}
	if url == "" || len(tiers) == 0 {
		logging.WarnWithContext(logger, "no extraction tiers for url", "extraction_skipped",
			logging.String("family", string(family)),
			logging.String(logging.FieldErrorHint, "check the URL in the article list"),
		)
		e.metrics.ExtractionResult(string(family), false)
		return ""
	}

	start := time.Now()
	for _, tier := range tiers {
		text, err := e.runTier(ctx, logger, tier, url)
		if err == nil {
			logger.Info("extraction succeeded",
				logging.String("tier", tier.Name()),
				logging.Int("chars", utf8.RuneCountInString(text)),
				logging.Duration("duration", time.Since(start)),
			)
			e.metrics.ExtractionResult(string(family), true)
			return text
		}
		if ctx.Err() != nil {
			break
		}
		logger.Info("extraction tier exhausted",
			logging.String("tier", tier.Name()),
			logging.Error(err),
		)
	}

	logging.WarnWithContext(logger, "extraction failed on every tier", "extraction_failed",
		logging.String("family", string(family)),
		logging.Int("tiers", len(tiers)),
		logging.Duration("duration", time.Since(start)),
		logging.String(logging.FieldErrorHint, "open the URL manually; the page may be paywalled or the video may have no captions"),
		logging.String(logging.FieldImpact, "item receives placeholder text"),
	)
	e.metrics.ExtractionResult(string(family), false)
	return ""
}

func (e *Extractor) runTier(ctx context.Context, logger *slog.Logger, tier Tier, url string) (string, error) {
	var accepted string
	policy := retry.Policy{
		MaxAttempts: e.settings.MaxRetries + 1,
		Backoff:     e.settings.RetryDelay,
		Sleep:       e.sleep,
		// A per-attempt deadline inside the tier is retryable; cancellation
		// of the run is not.
		IsRetryable: func(err error) bool {
			return ctx.Err() == nil && !services.IsDeterministic(err)
		},
	}
	_, err := retry.Do(ctx, policy, func(ctx context.Context, n int) error {
		raw, fetchErr := tier.Fetch(ctx, url)
		text, err := e.accept(raw, fetchErr)
		attempt := Attempt{
			Tier:    tier.Name(),
			Outcome: classify(err),
			Attempt: n,
			Length:  utf8.RuneCountInString(text),
			Err:     err,
		}
		e.record(logger, attempt)
		if err != nil {
			return err
		}
		accepted = text
		return nil
	})
	return accepted, err
}

var errInsufficient = errors.New("insufficient content")

// accept applies the acceptance rule to a tier result.
func (e *Extractor) accept(raw string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		return "", services.Wrap(services.ErrTransient, "extraction", "accept", "empty result", errInsufficient)
	case strings.HasPrefix(text, errorSentinelPrefix):
		return text, services.Wrap(services.ErrTransient, "extraction", "accept", "error sentinel in output", errInsufficient)
	case utf8.RuneCountInString(text) < e.settings.MinContentLength:
		return text, services.Wrap(services.ErrTransient, "extraction", "accept",
			fmt.Sprintf("%d chars below minimum %d", utf8.RuneCountInString(text), e.settings.MinContentLength), errInsufficient)
	}
	return text, nil
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, errInsufficient):
		return OutcomeInsufficient
	case services.IsDeterministic(err):
		return OutcomeDeterministic
	default:
		return OutcomeTransient
	}
}

func (e *Extractor) record(logger *slog.Logger, a Attempt) {
	e.metrics.ExtractionAttempt(a.Tier, string(a.Outcome))
	if e.observe != nil {
		e.observe(a)
	}
	attrs := []logging.Attr{
		logging.String("tier", a.Tier),
		logging.String("outcome", string(a.Outcome)),
		logging.Int("attempt", a.Attempt),
		logging.Int("max_attempts", e.settings.MaxRetries+1),
	}
	if a.Err != nil {
		attrs = append(attrs, logging.Error(a.Err))
		logger.Debug("extraction attempt failed", logging.Args(attrs...)...)
		return
	}
	attrs = append(attrs, logging.Int("chars", a.Length))
	logger.Debug("extraction attempt accepted", logging.Args(attrs...)...)
}
