package phases

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/etl"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
	"github.com/lizzypokerface/news-hub-aggregator/internal/summarystore"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
	"github.com/lizzypokerface/news-hub-aggregator/internal/testsupport"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

var runDate = time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

// backend answers each prompt family with canned text and counts calls.
type backend struct {
	mu           sync.Mutex
	calls        map[string]int
	failBriefing bool
	failMaterial bool
}

func (b *backend) Generate(_ context.Context, prompt string, _ generation.Provider, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	switch {
	case strings.HasPrefix(prompt, "You are a Mainstream News Analyst"):
		b.calls["narrative"]++
		return "## China\nState media reports growth.\n## Europe\nSummit coverage.", nil
	case strings.HasPrefix(prompt, "You are a political economist"):
		b.calls["ledger"]++
		return "| Country | GDP |\n|---|---|\n| A | 1 |", nil
	case strings.HasPrefix(prompt, "Role: You are an intelligence analyst"):
		b.calls["brief"]++
		return "> reasoning trace\n**Triage Tags**\n* **Type:** News Report", nil
	case strings.HasPrefix(prompt, "You are The Materialist Analyst"):
		b.calls["materialist"]++
		if b.failMaterial {
			return "", errors.New("quota")
		}
		return "Capital flows matter.", nil
	case strings.HasPrefix(prompt, "You are a Geopolitical Strategy Chief"):
		b.calls["briefing"]++
		if b.failBriefing {
			return "", errors.New("backend down")
		}
		return "## China\n### Mainstream Narrative\nGrowth story.\n### Strategic Analysis\nIndustrial policy.", nil
	case strings.HasPrefix(prompt, "You are Crucible Analyst"):
		b.calls["lens"]++
		if strings.Contains(prompt, "**China**") {
			return "### The Realist\nBalance of power.", nil
		}
		return digest.NoMultiLensDataSignal, nil
	}
	b.calls["other"]++
	return "", errors.New("unexpected prompt")
}

func (b *backend) count(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[kind]
}

type pages map[string]string

func (p pages) Text(_ context.Context, url string) string { return p[url] }

// articleSource stands in for the interactive ETL by writing the final
// stage file directly.
type articleSource struct {
	ws       *workspace.Manager
	articles []digest.Article
	runs     int
}

func (a *articleSource) Run(context.Context) ([]digest.Article, error) {
	a.runs++
	text, err := etl.EncodeArticles(a.articles, []string{"source", "url", "type", "format", "rank", "title", "region"})
	if err != nil {
		return nil, err
	}
	if err := a.ws.SaveReport(etl.Stage3File, text); err != nil {
		return nil, err
	}
	return a.articles, nil
}

type fixture struct {
	env     *Env
	backend *backend
	etl     *articleSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	ws, err := workspace.New(root, runDate, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := testsupport.MustOpenSummaries(t, filepath.Join(ws.Dir(), summarystore.FileName))

	cfg := config.Default()
	long := strings.Repeat("Substantive reporting on regional events. ", 10)
	sources := []config.Source{
		{Name: "Wire", URL: "https://wire.example.com", Type: config.SourceDatapoint, Format: config.FormatWebpage, Rank: 1},
		{Name: "Outlet A", URL: "https://a.example.com", Type: config.SourceAnalysis, Format: config.FormatWebpage, Rank: 1},
		{Name: "Outlet B", URL: "https://b.example.com", Type: config.SourceAnalysis, Format: config.FormatWebpage, Rank: 2},
	}
	articles := []digest.Article{
		{Source: "Outlet A", URL: "https://a.example.com/1", Type: "analysis", Format: "webpage", Rank: 1, Title: "China trade", Region: "China"},
		{Source: "Outlet B", URL: "https://b.example.com/2", Type: "analysis", Format: "webpage", Rank: 2, Title: "EU summit", Region: "Europe"},
		{Source: "Outlet A", URL: "https://a.example.com/3", Type: "analysis", Format: "webpage", Rank: 1, Title: "Paywalled", Region: "China"},
	}
	extractor := pages{
		"https://wire.example.com": long,
		"https://a.example.com/1":  long,
		"https://b.example.com/2":  long,
		"https://a.example.com/3":  "Subscribe to read.",
	}
	gen := &backend{}
	src := &articleSource{ws: ws, articles: articles}
	env := &Env{
		Config:    &cfg,
		Sources:   sources,
		Workspace: ws,
		Extractor: extractor,
		Generator: gen,
		ETL:       src,
		Summaries: store,
		Logger:    logging.NewNop(),
		RunID:     "run-test",
		Date:      runDate,
		Now:       func() time.Time { return runDate.Add(9 * time.Hour) },
	}
	return &fixture{env: env, backend: gen, etl: src}
}

func entryRegions[T any](entries []T, regionOf func(T) string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, regionOf(e))
	}
	return out
}

func (f *fixture) run(t *testing.T) (pipeline.Summary, error) {
	t.Helper()
	return pipeline.New(f.env.Workspace, All(f.env), pipeline.WithRunID(f.env.RunID)).Run(context.Background())
}

func TestThreeSourceRunProducesCompleteDigest(t *testing.T) {
	f := newFixture(t)
	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Count(pipeline.Checkpointed) != 9 {
		t.Fatalf("expected 9 checkpointed phases, got %+v", summary.Results)
	}

	var sums digest.Summarization
	if !f.env.Workspace.LoadCheckpoint(KeySummarization, &sums) {
		t.Fatalf("expected summarization checkpoint")
	}
	if len(sums.Regions) != len(taxonomy.Regions()) {
		t.Fatalf("expected every canonical region, got %d", len(sums.Regions))
	}
	counts := sums.Counts()
	if counts[digest.BriefSummarized] != 2 || counts[digest.BriefPlaceholder] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if f.backend.count("brief") != 2 {
		t.Fatalf("expected two summarization calls, got %d", f.backend.count("brief"))
	}
	china := sums.Regions[taxonomy.Index("China")]
	if len(china.Briefs) != 2 || china.Briefs[1].Summary != digest.SummaryPlaceholder {
		t.Fatalf("unexpected China briefs %+v", china.Briefs)
	}
	if strings.Contains(china.Briefs[0].Summary, "reasoning trace") {
		t.Fatalf("quote lines must be dropped: %q", china.Briefs[0].Summary)
	}

	var (
		narrative   digest.MainstreamNarrative
		materialist digest.MaterialistAnalysis
		briefing    digest.GlobalBriefing
		lenses      digest.MultiLensAnalysis
	)
	for key, target := range map[string]any{
		KeyMainstreamNarrative: &narrative,
		KeyMaterialist:         &materialist,
		KeyGlobalBriefing:      &briefing,
		KeyMultiLens:           &lenses,
	} {
		if !f.env.Workspace.LoadCheckpoint(key, target) {
			t.Fatalf("missing checkpoint %s", key)
		}
	}
	for key, regions := range map[string][]string{
		KeyMainstreamNarrative: entryRegions(narrative.Entries, func(e digest.NarrativeEntry) string { return e.Region }),
		KeyMaterialist:         entryRegions(materialist.Entries, func(e digest.MaterialistEntry) string { return e.Region }),
		KeyGlobalBriefing:      entryRegions(briefing.Entries, func(e digest.BriefingEntry) string { return e.Region }),
		KeyMultiLens:           entryRegions(lenses.Entries, func(e digest.LensEntry) string { return e.Region }),
	} {
		if !slices.Equal(regions, taxonomy.Regions()) {
			t.Fatalf("checkpoint %s regions out of canonical order: %v", key, regions)
		}
	}

	// one materialist call per region that has a summaries report
	if f.backend.count("materialist") != 2 {
		t.Fatalf("expected 2 materialist calls, got %d", f.backend.count("materialist"))
	}
	if f.backend.count("lens") != len(taxonomy.Regions()) {
		t.Fatalf("expected one lens call per region, got %d", f.backend.count("lens"))
	}

	post := f.env.Workspace.LoadReport(report.WeeklyPostName(runDate))
	for _, want := range []string{
		"layout: post",
		"# China <a id='china'></a>",
		"[`Outlet A` China trade](https://a.example.com/1)",
		"[`Outlet B` EU summit](https://b.example.com/2)",
		"[`Outlet A` Paywalled](https://a.example.com/3)",
		"Lens: The Realist",
	} {
		if !strings.Contains(post, want) {
			t.Fatalf("weekly post missing %q:\n%s", want, post)
		}
	}
	if f.env.Workspace.LoadReport(report.SummaryName(runDate, "China")) == "" {
		t.Fatalf("expected China summaries report")
	}
}

func TestRerunMakesNoExternalCalls(t *testing.T) {
	f := newFixture(t)
	if _, err := f.run(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := map[string]int{}
	for _, kind := range []string{"narrative", "ledger", "brief", "materialist", "briefing", "lens"} {
		before[kind] = f.backend.count(kind)
	}
	post := f.env.Workspace.LoadReport(report.WeeklyPostName(runDate))

	summary, err := f.run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Count(pipeline.Skipped) != 9 {
		t.Fatalf("expected every phase skipped, got %+v", summary.Results)
	}
	for kind, n := range before {
		if f.backend.count(kind) != n {
			t.Fatalf("%s calls changed on rerun: %d -> %d", kind, n, f.backend.count(kind))
		}
	}
	if f.etl.runs != 1 {
		t.Fatalf("expected the ETL to run once, got %d", f.etl.runs)
	}
	if f.env.Workspace.LoadReport(report.WeeklyPostName(runDate)) != post {
		t.Fatalf("weekly post changed on rerun")
	}
}

func TestResumeAfterBriefingFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.failBriefing = true
	summary, err := f.run(t)
	if err == nil {
		t.Fatalf("expected error")
	}
	for i, r := range summary.Results {
		switch {
		case i < 6 && r.State != pipeline.Checkpointed:
			t.Fatalf("phase %s: expected checkpointed, got %s", r.Name, r.State)
		case i == 6 && r.State != pipeline.Failed:
			t.Fatalf("phase %s: expected failed, got %s", r.Name, r.State)
		case i > 6 && r.State != pipeline.NotStarted:
			t.Fatalf("phase %s: expected not started, got %s", r.Name, r.State)
		}
	}
	if f.env.Workspace.HasCheckpoint(KeyGlobalBriefing) {
		t.Fatalf("failed phase must not checkpoint")
	}
	briefs := f.backend.count("brief")

	f.backend.failBriefing = false
	summary, err = f.run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Count(pipeline.Skipped) != 6 || summary.Count(pipeline.Checkpointed) != 3 {
		t.Fatalf("unexpected resume states %+v", summary.Results)
	}
	if f.backend.count("brief") != briefs {
		t.Fatalf("summaries must not be regenerated on resume")
	}
}

func TestSummaryCacheSurvivesLostCheckpoint(t *testing.T) {
	f := newFixture(t)
	phases := All(f.env)
	for _, phase := range phases[:4] {
		if _, err := pipeline.New(f.env.Workspace, []pipeline.Phase{phase}).Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	summarization := phases[4]
	if _, err := summarization.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := f.backend.count("brief")

	// executing again without a checkpoint reuses the cached briefs
	out, err := summarization.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.backend.count("brief") != first {
		t.Fatalf("expected cached briefs, calls went %d -> %d", first, f.backend.count("brief"))
	}
	if out.Checkpoint.(digest.Summarization).Counts()[digest.BriefSummarized] != 2 {
		t.Fatalf("unexpected cached result %+v", out.Checkpoint)
	}
	cached, err := f.env.Summaries.Counts(context.Background(), runDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached[digest.BriefSummarized] != 2 || cached[digest.BriefPlaceholder] != 1 {
		t.Fatalf("unexpected cache totals %v", cached)
	}
}

func TestMaterialistFailureBecomesPlaceholders(t *testing.T) {
	f := newFixture(t)
	f.backend.failMaterial = true
	if _, err := f.run(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var data digest.MaterialistAnalysis
	if !f.env.Workspace.LoadCheckpoint(KeyMaterialist, &data) {
		t.Fatalf("expected materialist checkpoint")
	}
	for _, entry := range data.Entries {
		if entry.Analysis != digest.MaterialistPlaceholder {
			t.Fatalf("expected placeholder for %s, got %q", entry.Region, entry.Analysis)
		}
	}
}

func TestFinalAssemblyRequiresUpstreamCheckpoints(t *testing.T) {
	f := newFixture(t)
	final := &FinalAssembly{env: f.env}
	if _, err := final.Execute(context.Background()); err == nil {
		t.Fatalf("expected error without briefing checkpoint")
	}
}

func TestSummarizationRequiresStageFile(t *testing.T) {
	f := newFixture(t)
	if _, err := (&Summarization{env: f.env}).Execute(context.Background()); err == nil {
		t.Fatalf("expected error without stage 3 file")
	}
}
