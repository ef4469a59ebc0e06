// Package headlines consolidates source headlines: recent titles and page
// text from mainstream outlets, and the ranked titles the ETL collected from
// analysis outlets.
package headlines

import (
	"context"
	"log/slog"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// Lookback is how far back channel uploads count as this week's headlines.
const Lookback = 7 * 24 * time.Hour

// ChannelLister lists recent upload titles for a channel handle.
type ChannelLister interface {
	RecentTitles(ctx context.Context, handle string, since time.Time) ([]string, error)
}

// TextExtractor returns a page's readable text, or "" when it has none.
type TextExtractor interface {
	Text(ctx context.Context, url string) string
}

// Mainstream consolidates datapoint sources.
type Mainstream struct {
	channels ChannelLister
	pages    TextExtractor
	logger   *slog.Logger
	now      func() time.Time
}

// MainstreamOption customizes a Mainstream consolidator.
type MainstreamOption func(*Mainstream)

// WithClock overrides the time source used for the lookback window.
func WithClock(now func() time.Time) MainstreamOption {
	return func(m *Mainstream) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMainstream builds a consolidator. A nil channels lister skips YouTube
// sources with a warning.
func NewMainstream(channels ChannelLister, pages TextExtractor, logger *slog.Logger, opts ...MainstreamOption) *Mainstream {
	m := &Mainstream{
		channels: channels,
		pages:    pages,
		logger:   logging.NewComponentLogger(logger, "headlines"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Consolidate gathers content for every datapoint source. A source that
// yields nothing is left out; only cancellation returns an error.
func (m *Mainstream) Consolidate(ctx context.Context, date time.Time, sources []config.Source) (digest.MainstreamHeadlines, error) {
	out := digest.MainstreamHeadlines{Date: date}
	datapoints := config.FilterSources(sources, config.SourceDatapoint)
	if len(datapoints) == 0 {
		logging.WarnWithContext(m.logger, "no datapoint sources configured", "no_datapoint_sources",
			logging.String(logging.FieldErrorHint, "add sources with type: datapoint to the sources file"),
			logging.String(logging.FieldImpact, "mainstream narrative receives no input"),
		)
		return out, nil
	}

	since := m.now().Add(-Lookback)
	for _, src := range datapoints {
		if err := ctx.Err(); err != nil {
			return digest.MainstreamHeadlines{}, err
		}
		var content []string
		switch src.Format {
		case config.FormatYouTube:
			content = m.channelTitles(ctx, src, since)
		case config.FormatWebpage:
			if text := m.pages.Text(ctx, src.URL); text != "" {
				content = []string{text}
			}
		}
		if len(content) == 0 {
			logging.WarnWithContext(m.logger, "no content for mainstream source", "source_empty",
				logging.String("source", src.Name),
				logging.String("url", src.URL),
				logging.String(logging.FieldImpact, "source omitted from the headlines report"),
			)
			continue
		}
		m.logger.Info("mainstream source consolidated",
			logging.String("source", src.Name),
			logging.String("format", src.Format),
			logging.Int("entries", len(content)),
		)
		out.Entries = append(out.Entries, digest.SourceEntry{SourceName: src.Name, Format: src.Format, Content: content})
	}
	if err := ctx.Err(); err != nil {
		return digest.MainstreamHeadlines{}, err
	}
	return out, nil
}

func (m *Mainstream) channelTitles(ctx context.Context, src config.Source, since time.Time) []string {
	if m.channels == nil {
		logging.WarnWithContext(m.logger, "youtube client unavailable", "youtube_unavailable",
			logging.String("source", src.Name),
			logging.String(logging.FieldErrorHint, "set api_keys.youtube or YOUTUBE_API_KEY"),
		)
		return nil
	}
	handle, ok := ChannelHandle(src.URL)
	if !ok {
		logging.WarnWithContext(m.logger, "cannot derive channel handle", "channel_handle_invalid",
			logging.String("source", src.Name),
			logging.String("url", src.URL),
		)
		return nil
	}
	titles, err := m.channels.RecentTitles(ctx, handle, since)
	if err != nil {
		logging.WarnWithContext(m.logger, "channel titles unavailable", "youtube_api_failed",
			logging.String("source", src.Name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return nil
	}
	return titles
}
