package phases

import (
	"context"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
	"github.com/lizzypokerface/news-hub-aggregator/internal/synthesis"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

// MaterialistAnalysis analyzes each region's summaries report.
type MaterialistAnalysis struct{ env *Env }

func (p *MaterialistAnalysis) Name() string { return "materialist_analysis" }
func (p *MaterialistAnalysis) Key() string  { return KeyMaterialist }

func (p *MaterialistAnalysis) Execute(ctx context.Context) (pipeline.Output, error) {
	logger := p.env.logger("materialist_analysis")
	var inputs []synthesis.RegionText
	for _, name := range p.env.Workspace.ReportNames(report.SummariesDir) {
		content := p.env.Workspace.LoadReport(name)
		heading := report.FirstHeading(content)
		region, ok := taxonomy.Normalize(heading)
		if !ok {
			logger.Debug("summary report outside region list", logging.String("report", name), logging.String("heading", heading))
			continue
		}
		inputs = append(inputs, synthesis.RegionText{Region: region, Text: content})
	}
	if len(inputs) == 0 {
		logging.WarnWithContext(logger, "no regional summaries found", "summaries_missing",
			logging.String(logging.FieldImpact, "every region receives placeholder text"),
		)
	}

	data, err := p.env.synthesizer().Materialist(ctx, p.env.Config.Models.MaterialistAnalysis, p.env.Date, inputs)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.Materialist(data)}}, nil
}

func synthesisInputs(env *Env, component string) synthesis.Inputs {
	logger := env.logger(component)
	return synthesis.Inputs{
		Mainstream:  env.loadReport(logger, report.NarrativeName(env.Date)),
		Analysis:    env.loadReport(logger, report.AnalysisHeadlinesName(env.Date)),
		Materialist: env.loadReport(logger, report.MaterialistName(env.Date)),
		Economics:   env.loadReport(logger, report.LedgerName(env.Date)),
	}
}

// GlobalBriefing fuses the four reports into the regional briefing.
type GlobalBriefing struct{ env *Env }

func (p *GlobalBriefing) Name() string { return "global_briefing" }
func (p *GlobalBriefing) Key() string  { return KeyGlobalBriefing }

func (p *GlobalBriefing) Execute(ctx context.Context) (pipeline.Output, error) {
	data, err := p.env.synthesizer().Briefing(ctx, p.env.Config.Models.GlobalBriefing, p.env.Date, synthesisInputs(p.env, p.Name()))
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.Briefing(data)}}, nil
}

// MultiLensAnalysis produces the per-region lens analysis.
type MultiLensAnalysis struct{ env *Env }

func (p *MultiLensAnalysis) Name() string { return "multi_lens_analysis" }
func (p *MultiLensAnalysis) Key() string  { return KeyMultiLens }

func (p *MultiLensAnalysis) Execute(ctx context.Context) (pipeline.Output, error) {
	data, err := p.env.synthesizer().MultiLens(ctx, p.env.Config.Models.MultiLens, p.env.Date, synthesisInputs(p.env, p.Name()))
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.MultiLens(data)}}, nil
}
