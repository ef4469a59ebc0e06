// Package phases implements the nine checkpointed steps of the weekly
// digest. Every phase reads its inputs from the run workspace and receives
// its collaborators through one explicit Env.
package phases

import (
	"context"
	"log/slog"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/headlines"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/summarystore"
	"github.com/lizzypokerface/news-hub-aggregator/internal/synthesis"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

// Checkpoint keys, in run order.
const (
	KeyMainstreamHeadlines = "p1_mainstream_headlines"
	KeyMainstreamNarrative = "p1_mainstream_narrative"
	KeyGeopoliticalLedger  = "p1_geopolitical_ledger"
	KeyNewsETL             = "p2_news_etl"
	KeySummarization       = "p3_summarization"
	KeyMaterialist         = "p4_materialist_analysis"
	KeyGlobalBriefing      = "p5_global_briefing"
	KeyMultiLens           = "p6_multi_lens_analysis"
	KeyFinalAssembly       = "p7_final_assembly"
)

// ArticleSource produces the categorised analysis articles.
type ArticleSource interface {
	Run(ctx context.Context) ([]digest.Article, error)
}

// Env is the per-run context shared by every phase. It is built once by the
// caller; phases never reach for global state.
type Env struct {
	Config    *config.Config
	Sources   []config.Source
	Workspace *workspace.Manager
	Extractor headlines.TextExtractor
	Generator synthesis.Generator
	// Channels may be nil when no YouTube key is configured.
	Channels  headlines.ChannelLister
	ETL       ArticleSource
	Summaries *summarystore.Store
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	RunID     string
	Date      time.Time
	Now       func() time.Time
}

func (e *Env) logger(component string) *slog.Logger {
	return logging.NewComponentLogger(e.Logger, component)
}

func (e *Env) synthesizer() *synthesis.Synthesizer {
	return synthesis.New(e.Generator, e.Logger, e.Metrics)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// All returns the phases in run order.
func All(env *Env) []pipeline.Phase {
	return []pipeline.Phase{
		&MainstreamHeadlines{env: env},
		&MainstreamNarrative{env: env},
		&GeopoliticalLedger{env: env},
		&NewsETL{env: env},
		&Summarization{env: env},
		&MaterialistAnalysis{env: env},
		&GlobalBriefing{env: env},
		&MultiLensAnalysis{env: env},
		&FinalAssembly{env: env},
	}
}

// loadReport reads a report written by an earlier phase, warning when it is
// missing since the consumer will run on less input.
func (e *Env) loadReport(logger *slog.Logger, name string) string {
	text := e.Workspace.LoadReport(name)
	if text == "" {
		logging.WarnWithContext(logger, "input report missing", "input_report_missing",
			logging.String("report", name),
			logging.String(logging.FieldErrorHint, "rerun the phase that writes this report by deleting its checkpoint"),
			logging.String(logging.FieldImpact, "stage runs without this input"),
		)
	}
	return text
}
