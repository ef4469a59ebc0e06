package etl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// YouTubeTitleSelector locates the video title on a watch page.
const YouTubeTitleSelector = "yt-formatted-string.style-scope.ytd-watch-metadata"

const maxTitleBody = 4 << 20

// resolveTitles fills Title for every article: an automated pass first,
// then a manual pass over the failures.
func (p *Pipeline) resolveTitles(ctx context.Context, pool *browser.Pool, articles []digest.Article) ([]digest.Article, error) {
	out := make([]digest.Article, len(articles))
	copy(out, articles)

	var manual []int
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title, err := p.automaticTitle(ctx, pool, out[i])
		if err != nil || title == "" {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Info("title queued for manual entry",
				logging.String("url", out[i].URL),
				logging.String("reason", reason(err)),
			)
			manual = append(manual, i)
			continue
		}
		out[i].Title = title
	}
	p.logger.Info("automatic title pass complete",
		logging.Int("resolved", len(out)-len(manual)),
		logging.Int("queued", len(manual)),
	)

	if len(manual) > 0 {
		p.printf("\n%s\nACTION REQUIRED: %d titles need manual entry.\n%s\n", banner, len(manual), banner)
	}
	for _, i := range manual {
		if page, err := pool.Acquire(false); err == nil {
			if navErr := page.Navigate(ctx, out[i].URL); navErr != nil && ctx.Err() == nil {
				p.logger.Debug("manual title page did not open", logging.String("url", out[i].URL), logging.Error(navErr))
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.printf("URL (opened in browser): %s\n", out[i].URL)
		title, err := p.prompter.Title(ctx, out[i].URL)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "news_etl", "manual title", out[i].URL, err)
		}
		out[i].Title = title
	}
	return out, nil
}

func (p *Pipeline) automaticTitle(ctx context.Context, pool *browser.Pool, article digest.Article) (string, error) {
	if article.Format == config.FormatYouTube || extract.IsVideoURL(article.URL) {
		page, err := pool.Acquire(true)
		if err != nil {
			return "", err
		}
		waitCtx, cancel := context.WithTimeout(ctx, p.settings.PageWait)
		defer cancel()
		return page.ElementText(waitCtx, article.URL, YouTubeTitleSelector)
	}
	return p.webpageTitle(ctx, article.URL)
}

func (p *Pipeline) webpageTitle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrDeterministic, "news_etl", "title request", url, err)
	}
	if ua := p.settings.Browser.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "news_etl", "title request", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", services.Wrap(services.ErrDeterministic, "news_etl", "title request", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTitleBody))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "news_etl", "title body", url, err)
	}
	return strings.TrimSpace(extract.DocumentTitle(string(body))), nil
}

func reason(err error) string {
	if err == nil {
		return "empty title"
	}
	return err.Error()
}
