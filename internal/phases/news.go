package phases

import (
	"context"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/headlines"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

// NewsETL gathers analysis articles and consolidates their headlines.
type NewsETL struct{ env *Env }

func (p *NewsETL) Name() string { return "news_etl" }
func (p *NewsETL) Key() string  { return KeyNewsETL }

func (p *NewsETL) Execute(ctx context.Context) (pipeline.Output, error) {
	if p.env.ETL == nil {
		return pipeline.Output{}, services.Wrap(services.ErrConfiguration, p.Name(), "etl", "article source not configured", nil)
	}
	articles, err := p.env.ETL.Run(ctx)
	if err != nil {
		return pipeline.Output{}, err
	}

	byRegion := map[string]int{}
	for _, article := range articles {
		byRegion[taxonomy.Categorise(article.Region)]++
	}
	grouped := headlines.Analysis(p.env.Date, articles)
	data := digest.NewsETL{
		Date:      p.env.Date,
		Articles:  len(articles),
		ByRegion:  byRegion,
		Headlines: grouped,
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.AnalysisHeadlines(grouped)}}, nil
}
