package etl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

const banner = "================================================================================"

// collectLinks walks the analysis sources: the source page is opened in a
// visible browser, the operator pastes chosen links into the links file and
// confirms, and the file is read and emptied for the next source.
func (p *Pipeline) collectLinks(ctx context.Context, pool *browser.Pool) ([]digest.Article, error) {
	sources := config.FilterSources(p.settings.Sources, config.SourceAnalysis)
	if len(sources) == 0 {
		logging.WarnWithContext(p.logger, "no analysis sources configured", "no_analysis_sources",
			logging.String(logging.FieldErrorHint, "add sources with type: analysis to the sources file"),
			logging.String(logging.FieldImpact, "no analysis articles this cycle"),
		)
		return []digest.Article{}, nil
	}
	if err := ensureFile(p.settings.LinksFile); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "news_etl", "links file", p.settings.LinksFile, err)
	}

	articles := []digest.Article{}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.printf("\n%s\nACTION REQUIRED: processing source '%s'\nOpening URL: %s\n\n", banner, src.Name, src.URL)
		p.printf("1. A browser window opens on the source page.\n")
		p.printf("2. Copy the links of the articles or videos to include.\n")
		p.printf("3. Paste them into this file, one per line:\n   ==> %s\n", p.settings.LinksFile)
		p.printf("Cut-off date (one week ago): %s\n%s\n", p.ws.Date().AddDate(0, 0, -7).Format("02/01/06"), banner)

		if page, err := pool.Acquire(false); err != nil {
			logging.WarnWithContext(p.logger, "browser unavailable for link collection", "browser_unavailable",
				logging.String("source", src.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "open the source URL manually"),
			)
		} else if err := page.Navigate(ctx, src.URL); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.WarnWithContext(p.logger, "could not open source page", "browser_navigate_failed",
				logging.String("source", src.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "open the source URL manually"),
			)
		}

		if err := p.prompter.Confirm(ctx, fmt.Sprintf("Links for %s saved?", src.Name), p.settings.LinksFile); err != nil {
			return nil, services.Wrap(services.ErrValidation, "news_etl", "confirm links", src.Name, err)
		}

		urls, err := drainLinks(p.settings.LinksFile)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "news_etl", "read links", p.settings.LinksFile, err)
		}
		if len(urls) == 0 {
			logging.WarnWithContext(p.logger, "no links saved for source", "source_no_links",
				logging.String("source", src.Name),
			)
			continue
		}
		for _, url := range urls {
			articles = append(articles, digest.Article{
				Source: src.Name,
				URL:    url,
				Type:   src.Type,
				Format: src.Format,
				Rank:   src.Rank,
			})
		}
		p.logger.Info("links collected", logging.String("source", src.Name), logging.Int("links", len(urls)))
	}
	return articles, nil
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// drainLinks returns the non-blank lines of path and truncates it.
func drainLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	err = scanner.Err()
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	return urls, os.Truncate(path, 0)
}
