package etl

import (
	"context"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

const categoriserPrompt = `You are an expert news editor. Categorize the following text into exactly one of these regions:
{categories}

Text to Analyze:
"{text}"

Instructions:
1. Analyze the geographic entities (countries, cities) and the source context.
2. Return ONLY the category name from the list above.
3. Do not add punctuation, explanations, or 'Category:'.`

var categoryList = strings.Join(append(taxonomy.Regions(), taxonomy.Unknown), ", ")

// assignRegions categorises every article. Generation errors and answers
// outside the region list become Unknown; only cancellation fails the step.
func (p *Pipeline) assignRegions(ctx context.Context, articles []digest.Article) ([]digest.Article, error) {
	out := make([]digest.Article, len(articles))
	copy(out, articles)
	ref := p.settings.Categoriser
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i%5 == 0 {
			p.logger.Info("categorising", logging.Int("done", i), logging.Int("total", len(out)))
		}
		text := "Title: " + out[i].Title + "\nSource: " + out[i].Source
		prompt := strings.NewReplacer("{categories}", categoryList, "{text}", text).Replace(categoriserPrompt)
		answer, err := p.gen.Generate(ctx, prompt, generation.Provider(ref.Provider), ref.Model)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.WarnWithContext(p.logger, "categorisation failed", "categorise_failed",
				logging.String("url", out[i].URL),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "article listed under In-Depth Analysis"),
			)
			out[i].Region = taxonomy.Unknown
			continue
		}
		out[i].Region = taxonomy.Categorise(strings.Trim(strings.TrimSpace(answer), `"'`))
		if out[i].Region == taxonomy.Unknown {
			p.logger.Debug("categoriser answer outside region list", logging.String("answer", answer))
		}
	}
	return out, nil
}
