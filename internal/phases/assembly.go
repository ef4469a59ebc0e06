package phases

import (
	"context"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// FinalAssembly writes the publishable weekly post.
type FinalAssembly struct{ env *Env }

func (p *FinalAssembly) Name() string { return "final_assembly" }
func (p *FinalAssembly) Key() string  { return KeyFinalAssembly }

func (p *FinalAssembly) Execute(ctx context.Context) (pipeline.Output, error) {
	var briefing digest.GlobalBriefing
	if !p.env.Workspace.LoadCheckpoint(KeyGlobalBriefing, &briefing) {
		return pipeline.Output{}, services.Wrap(services.ErrNotFound, p.Name(), "load checkpoint", KeyGlobalBriefing+" missing", nil)
	}
	var lenses digest.MultiLensAnalysis
	if !p.env.Workspace.LoadCheckpoint(KeyMultiLens, &lenses) {
		return pipeline.Output{}, services.Wrap(services.ErrNotFound, p.Name(), "load checkpoint", KeyMultiLens+" missing", nil)
	}
	articles, err := loadArticles(p.env, p.Name())
	if err != nil {
		return pipeline.Output{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Output{}, err
	}

	post := report.WeeklyPost(report.PostInput{
		Date:      p.env.Date,
		Briefing:  briefing,
		Lenses:    lenses,
		Articles:  articles,
		Sources:   p.env.Sources,
		Formatter: p.env.Config.Post,
	})
	data := digest.FinalPost{Date: p.env.Date, Filename: post.Filename, Articles: len(articles)}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{post}}, nil
}
