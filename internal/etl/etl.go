// Package etl gathers analysis articles in three resumable steps: the
// operator collects links, titles are resolved, and each article is assigned
// a region. Each step persists a CSV in the run workspace and is skipped on
// later runs once its file exists.
package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

// Generator is the generation capability the region step needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, provider generation.Provider, model string) (string, error)
}

// Settings carries the ETL's configuration.
type Settings struct {
	Sources        []config.Source
	LinksFile      string
	Categoriser    config.ModelRef
	Browser        browser.Options
	ResetThreshold int
	TitleTimeout   time.Duration
	PageWait       time.Duration
}

// SettingsFromConfig derives Settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config, sources []config.Source) Settings {
	return Settings{
		Sources:        sources,
		LinksFile:      cfg.LinksFile(),
		Categoriser:    cfg.Models.Categoriser,
		Browser:        extract.BrowserOptions(cfg),
		ResetThreshold: cfg.TitleFetch.DriverResetThreshold,
		TitleTimeout:   time.Duration(cfg.TitleFetch.RequestTimeoutSeconds) * time.Second,
		PageWait:       time.Duration(cfg.TitleFetch.PageWaitSeconds) * time.Second,
	}
}

// Pipeline runs the ETL against one workspace.
type Pipeline struct {
	ws       *workspace.Manager
	settings Settings
	gen      Generator
	prompter Prompter
	open     browser.Opener
	client   *http.Client
	out      io.Writer
	logger   *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOpener replaces the browser launcher.
func WithOpener(open browser.Opener) Option {
	return func(p *Pipeline) {
		if open != nil {
			p.open = open
		}
	}
}

// WithHTTPClient sets the client used for webpage titles.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.client = client
		}
	}
}

// WithOutput sets where operator instructions are printed.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.out = w
		}
	}
}

// New builds a Pipeline.
func New(ws *workspace.Manager, settings Settings, gen Generator, prompter Prompter, opts ...Option) *Pipeline {
	if settings.TitleTimeout <= 0 {
		settings.TitleTimeout = 15 * time.Second
	}
	if settings.PageWait <= 0 {
		settings.PageWait = 10 * time.Second
	}
	p := &Pipeline{
		ws:       ws,
		settings: settings,
		gen:      gen,
		prompter: prompter,
		open:     browser.Launch,
		out:      os.Stdout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: settings.TitleTimeout}
	}
	p.logger = logging.NewComponentLogger(p.logger, "etl")
	return p
}

// Run executes the three steps and returns the categorised articles.
func (p *Pipeline) Run(ctx context.Context) ([]digest.Article, error) {
	pool := browser.NewPool(ctx, p.open, p.settings.Browser, p.settings.ResetThreshold, p.logger)
	defer pool.Close()

	links, err := p.step(ctx, Stage1File, linkColumns, nil, func(ctx context.Context, _ []digest.Article) ([]digest.Article, error) {
		return p.collectLinks(ctx, pool)
	})
	if err != nil {
		return nil, err
	}
	titled, err := p.step(ctx, Stage2File, titleColumns, links, func(ctx context.Context, in []digest.Article) ([]digest.Article, error) {
		return p.resolveTitles(ctx, pool, in)
	})
	if err != nil {
		return nil, err
	}
	return p.step(ctx, Stage3File, regionColumns, titled, p.assignRegions)
}

// step loads name when it exists, otherwise runs fn and persists its result.
func (p *Pipeline) step(ctx context.Context, name string, columns []string, in []digest.Article, fn func(context.Context, []digest.Article) ([]digest.Article, error)) ([]digest.Article, error) {
	path := p.ws.Path(name)
	existing, err := ReadArticles(path)
	switch {
	case err == nil:
		p.logger.Info("etl step already complete",
			logging.String(logging.FieldEventType, "etl_step_skipped"),
			logging.String("file", name),
			logging.Int("articles", len(existing)),
		)
		return existing, nil
	case !errors.Is(err, fs.ErrNotExist):
		logging.WarnWithContext(p.logger, "etl stage file unreadable; redoing step", "etl_stage_corrupt",
			logging.String("file", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "step runs again"),
		)
	}

	out, err := fn(ctx, in)
	if err != nil {
		return nil, err
	}
	text, err := EncodeArticles(out, columns)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "news_etl", "encode csv", name, err)
	}
	if err := p.ws.SaveReport(name, text); err != nil {
		return nil, err
	}
	p.logger.Info("etl step complete",
		logging.String(logging.FieldEventType, "etl_step_complete"),
		logging.String("file", name),
		logging.Int("articles", len(out)),
	)
	return out, nil
}

func (p *Pipeline) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
