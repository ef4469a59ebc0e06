package phases

import (
	"context"
	"errors"
	"io/fs"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/etl"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

// Summarization extracts and summarizes every categorised article.
type Summarization struct{ env *Env }

func (p *Summarization) Name() string { return "summarization" }
func (p *Summarization) Key() string  { return KeySummarization }

func (p *Summarization) Execute(ctx context.Context) (pipeline.Output, error) {
	logger := p.env.logger("summarization")
	articles, err := loadArticles(p.env, p.Name())
	if err != nil {
		return pipeline.Output{}, err
	}

	grouped := map[string][]digest.Article{}
	for _, article := range articles {
		region := taxonomy.Categorise(article.Region)
		grouped[region] = append(grouped[region], article)
	}

	data := digest.Summarization{Date: p.env.Date}
	var reports []report.Artifact
	for _, region := range append(taxonomy.Regions(), taxonomy.Unknown) {
		var briefs []digest.Brief
		for _, article := range grouped[region] {
			brief, err := p.brief(ctx, article)
			if err != nil {
				return pipeline.Output{}, err
			}
			briefs = append(briefs, brief)
		}
		if len(briefs) > 0 {
			reports = append(reports, report.RegionSummary(p.env.Date, region, briefs))
			logger.Info("region summarized", logging.String("region", region), logging.Int("articles", len(briefs)))
		}
		if region == taxonomy.Unknown {
			data.Unknown = briefs
			continue
		}
		if briefs == nil {
			briefs = []digest.Brief{}
		}
		data.Regions = append(data.Regions, digest.RegionBriefs{Region: region, Briefs: briefs})
	}

	counts := data.Counts()
	logger.Info("summaries generated",
		logging.String(logging.FieldEventType, "summarization_complete"),
		logging.Int("summarized", counts[digest.BriefSummarized]),
		logging.Int("placeholders", counts[digest.BriefPlaceholder]),
		logging.Int("failed", counts[digest.BriefFailed]),
	)
	if p.env.Summaries != nil {
		cached, err := p.env.Summaries.Counts(ctx, p.env.Date)
		if err != nil {
			logger.Warn("summary cache count failed", logging.Error(err))
		} else {
			logger.Debug("summary cache totals",
				logging.Int("summarized", cached[digest.BriefSummarized]),
				logging.Int("placeholders", cached[digest.BriefPlaceholder]),
				logging.Int("failed", cached[digest.BriefFailed]),
			)
		}
	}
	return pipeline.Output{Checkpoint: data, Reports: reports}, nil
}

// brief returns the cached brief for the article or produces a new one.
func (p *Summarization) brief(ctx context.Context, article digest.Article) (digest.Brief, error) {
	ctx = services.WithItemURL(ctx, article.URL)
	logger := logging.WithContext(ctx, p.env.logger("summarization"))
	store := p.env.Summaries

	if store != nil {
		cached, err := store.Get(ctx, p.env.Date, article.URL)
		if err != nil {
			logger.Warn("summary cache read failed", logging.Error(err))
		} else if cached != nil {
			logger.Debug("summary served from cache")
			cached.Title = article.Title
			cached.Source = article.Source
			return *cached, nil
		}
	}

	content := p.env.Extractor.Text(ctx, article.URL)
	if err := ctx.Err(); err != nil {
		return digest.Brief{}, err
	}
	summary, status := p.env.synthesizer().IntelBrief(ctx, p.env.Config.Models.IntelBrief, content, p.env.Config.Extraction.MinContentLength)
	if err := ctx.Err(); err != nil {
		return digest.Brief{}, err
	}
	brief := digest.Brief{
		Title:       article.Title,
		Source:      article.Source,
		URL:         article.URL,
		CollectedAt: p.env.now().UTC(),
		Status:      status,
		Summary:     summary,
	}
	if store != nil {
		if err := store.Put(ctx, p.env.Date, p.env.RunID, brief); err != nil {
			logger.Warn("summary cache write failed", logging.Error(err))
		}
	}
	return brief, nil
}

// loadArticles reads the final ETL stage file, which must exist.
func loadArticles(env *Env, phase string) ([]digest.Article, error) {
	path := env.Workspace.Path(etl.Stage3File)
	articles, err := etl.ReadArticles(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, phase, "load articles", etl.Stage3File+" missing; rerun news_etl", err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, phase, "load articles", etl.Stage3File, err)
	}
	return articles, nil
}
