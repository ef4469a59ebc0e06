package phases

import (
	"context"

	"github.com/lizzypokerface/news-hub-aggregator/internal/headlines"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
)

// MainstreamHeadlines collects this week's datapoint headlines.
type MainstreamHeadlines struct{ env *Env }

func (p *MainstreamHeadlines) Name() string { return "mainstream_headlines" }
func (p *MainstreamHeadlines) Key() string  { return KeyMainstreamHeadlines }

func (p *MainstreamHeadlines) Execute(ctx context.Context) (pipeline.Output, error) {
	consolidator := headlines.NewMainstream(p.env.Channels, p.env.Extractor, p.env.Logger, headlines.WithClock(p.env.Now))
	data, err := consolidator.Consolidate(ctx, p.env.Date, p.env.Sources)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.MainstreamHeadlines(data)}}, nil
}

// MainstreamNarrative condenses the headlines report into a per-region
// narrative.
type MainstreamNarrative struct{ env *Env }

func (p *MainstreamNarrative) Name() string { return "mainstream_narrative" }
func (p *MainstreamNarrative) Key() string  { return KeyMainstreamNarrative }

func (p *MainstreamNarrative) Execute(ctx context.Context) (pipeline.Output, error) {
	text := p.env.loadReport(p.env.logger("mainstream_narrative"), report.MainstreamHeadlinesName(p.env.Date))
	data, err := p.env.synthesizer().Narrative(ctx, p.env.Config.Models.MainstreamNarrative, p.env.Date, text)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.Narrative(data)}}, nil
}

// GeopoliticalLedger generates the month's economic snapshot.
type GeopoliticalLedger struct{ env *Env }

func (p *GeopoliticalLedger) Name() string { return "geopolitical_ledger" }
func (p *GeopoliticalLedger) Key() string  { return KeyGeopoliticalLedger }

func (p *GeopoliticalLedger) Execute(ctx context.Context) (pipeline.Output, error) {
	data, err := p.env.synthesizer().Ledger(ctx, p.env.Config.Models.GeopoliticalLedger, p.env.Date)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.Output{Checkpoint: data, Reports: []report.Artifact{report.Ledger(data)}}, nil
}
