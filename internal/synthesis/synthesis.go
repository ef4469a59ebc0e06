// Package synthesis turns report text into region-keyed records through
// generation calls. Generated text is treated as untrusted: every stage
// passes its parse through taxonomy.Complete, so the canonical region set is
// guaranteed however malformed the response.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/metrics"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

// Generator is the generation capability the stages need.
type Generator interface {
	Generate(ctx context.Context, prompt string, provider generation.Provider, model string) (string, error)
}

// Synthesizer runs the generating stages.
type Synthesizer struct {
	gen     Generator
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New builds a Synthesizer.
func New(gen Generator, logger *slog.Logger, rec *metrics.Recorder) *Synthesizer {
	return &Synthesizer{
		gen:     gen,
		logger:  logging.NewComponentLogger(logger, "synthesis"),
		metrics: rec,
	}
}

// Inputs are the four reports the cross-cutting stages read.
type Inputs struct {
	Mainstream  string
	Analysis    string
	Materialist string
	Economics   string
}

// RegionText is one region's source material.
type RegionText struct {
	Region string
	Text   string
}

func (s *Synthesizer) generate(ctx context.Context, stage, prompt string, ref config.ModelRef) (string, error) {
	text, err := s.gen.Generate(ctx, prompt, generation.Provider(ref.Provider), ref.Model)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stage, "generate", ref.Provider+"/"+ref.Model, err)
	}
	return text, nil
}

// Narrative synthesizes the mainstream narrative from the headlines report.
// Input shorter than the minimum yields placeholders without a call.
func (s *Synthesizer) Narrative(ctx context.Context, ref config.ModelRef, date time.Time, headlines string) (digest.MainstreamNarrative, error) {
	const stage = "mainstream_narrative"
	placeholders := 0
	placeholder := func(region string) digest.NarrativeEntry {
		placeholders++
		return digest.NarrativeEntry{Region: region, Summary: digest.NarrativePlaceholder}
	}
	defer func() { s.metrics.Placeholders(stage, placeholders) }()

	if utf8.RuneCountInString(strings.TrimSpace(headlines)) < minNarrativeInput {
		logging.WarnWithContext(s.logger, "mainstream headlines too short to synthesize", "narrative_input_short",
			logging.Int("chars", utf8.RuneCountInString(headlines)),
			logging.String(logging.FieldErrorHint, "check the mainstream sources and the headlines report"),
			logging.String(logging.FieldImpact, "every region receives placeholder text"),
		)
		return digest.MainstreamNarrative{Date: date, Entries: taxonomy.Fill(placeholder)}, nil
	}

	prompt := fill(narrativePrompt, "{regions}", regionList(), "{input}", truncate(headlines, maxNarrativeInput))
	text, err := s.generate(ctx, stage, prompt, ref)
	if err != nil {
		return digest.MainstreamNarrative{}, err
	}

	var parsed []digest.NarrativeEntry
	for _, section := range taxonomy.SplitSections(text, 2) {
		parsed = append(parsed, digest.NarrativeEntry{Region: section.Heading, Summary: section.Body})
	}
	entries := taxonomy.Complete(stage, parsed,
		func(e digest.NarrativeEntry) string { return e.Region },
		func(e digest.NarrativeEntry, region string) digest.NarrativeEntry {
			e.Region = region
			return e
		},
		placeholder,
		s.logger,
	)
	return digest.MainstreamNarrative{Date: date, Entries: entries}, nil
}

// Ledger generates the month's economic snapshot table.
func (s *Synthesizer) Ledger(ctx context.Context, ref config.ModelRef, date time.Time) (digest.GeopoliticalLedger, error) {
	monthYear := date.Format("January 2006")
	s.logger.Info("generating geopolitical ledger", logging.String("month", monthYear))
	text, err := s.generate(ctx, "geopolitical_ledger", fill(ledgerPrompt, "{month_year}", monthYear), ref)
	if err != nil {
		return digest.GeopoliticalLedger{}, err
	}
	return digest.GeopoliticalLedger{Date: date, Content: strings.TrimSpace(text)}, nil
}

// IntelBrief summarizes one article. Content shorter than minLength becomes
// the placeholder without a call; a generation error becomes a visible
// failure marker. Lines starting with ">" are dropped from the output.
func (s *Synthesizer) IntelBrief(ctx context.Context, ref config.ModelRef, content string, minLength int) (string, digest.BriefStatus) {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minLength {
		s.metrics.Placeholders("summarization", 1)
		return digest.SummaryPlaceholder, digest.BriefPlaceholder
	}
	text, err := s.generate(ctx, "summarization", fill(intelBriefPrompt, "{content}", content), ref)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "intel brief generation failed", "intel_brief_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "article shows a generation failure marker"),
		)
		return fmt.Sprintf("%s\nGeneration error: %v", digest.GenerationFailedMarker, err), digest.BriefFailed
	}
	return dropQuoteLines(text), digest.BriefSummarized
}

// Materialist analyzes each region's summaries with one call per region. A
// failed call yields that region's placeholder; only cancellation aborts.
func (s *Synthesizer) Materialist(ctx context.Context, ref config.ModelRef, date time.Time, regions []RegionText) (digest.MaterialistAnalysis, error) {
	const stage = "materialist_analysis"
	var parsed []digest.MaterialistEntry
	for _, rt := range regions {
		if err := ctx.Err(); err != nil {
			return digest.MaterialistAnalysis{}, err
		}
		s.logger.Info("analyzing region", logging.String("stage", stage), logging.String("region", rt.Region))
		text, err := s.generate(ctx, stage, fill(materialistPrompt, "{content}", rt.Text), ref)
		if err != nil {
			if ctx.Err() != nil {
				return digest.MaterialistAnalysis{}, ctx.Err()
			}
			logging.WarnWithContext(s.logger, "materialist analysis failed for region", "region_generation_failed",
				logging.String("region", rt.Region),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "region receives placeholder text"),
			)
			continue
		}
		parsed = append(parsed, digest.MaterialistEntry{Region: rt.Region, Analysis: strings.TrimSpace(text)})
	}

	placeholders := 0
	entries := taxonomy.Complete(stage, parsed,
		func(e digest.MaterialistEntry) string { return e.Region },
		func(e digest.MaterialistEntry, region string) digest.MaterialistEntry {
			e.Region = region
			return e
		},
		func(region string) digest.MaterialistEntry {
			placeholders++
			return digest.MaterialistEntry{Region: region, Analysis: digest.MaterialistPlaceholder}
		},
		s.logger,
	)
	s.metrics.Placeholders(stage, placeholders)
	return digest.MaterialistAnalysis{Date: date, Entries: entries}, nil
}

// Briefing fuses the four inputs into the two-part regional briefing.
func (s *Synthesizer) Briefing(ctx context.Context, ref config.ModelRef, date time.Time, in Inputs) (digest.GlobalBriefing, error) {
	const stage = "global_briefing"
	prompt := fill(briefingPrompt,
		"{regions}", regionList(),
		"{econ}", truncate(in.Economics, maxEconomicsInput),
		"{mainstream}", truncate(in.Mainstream, maxContextInput),
		"{analysis}", truncate(in.Analysis, maxContextInput),
		"{materialist}", truncate(in.Materialist, maxContextInput),
	)
	text, err := s.generate(ctx, stage, prompt, ref)
	if err != nil {
		return digest.GlobalBriefing{}, err
	}

	var parsed []digest.BriefingEntry
	for _, section := range taxonomy.SplitSections(text, 2) {
		entry := digest.BriefingEntry{
			Region:              section.Heading,
			MainstreamNarrative: digest.BriefingNarrativeMissing,
			StrategicAnalysis:   digest.BriefingAnalysisMissing,
		}
		for _, sub := range taxonomy.SplitSections(section.Body, 3) {
			switch strings.ToLower(strings.Trim(sub.Heading, "*: ")) {
			case "mainstream narrative":
				entry.MainstreamNarrative = sub.Body
			case "strategic analysis":
				entry.StrategicAnalysis = sub.Body
			}
		}
		parsed = append(parsed, entry)
	}

	placeholders := 0
	entries := taxonomy.Complete(stage, parsed,
		func(e digest.BriefingEntry) string { return e.Region },
		func(e digest.BriefingEntry, region string) digest.BriefingEntry {
			e.Region = region
			return e
		},
		func(region string) digest.BriefingEntry {
			placeholders++
			return digest.BriefingEntry{
				Region:              region,
				MainstreamNarrative: digest.BriefingNarrativeFallback,
				StrategicAnalysis:   digest.BriefingAnalysisFallback,
			}
		},
		s.logger,
	)
	s.metrics.Placeholders(stage, placeholders)
	return digest.GlobalBriefing{Date: date, Entries: entries}, nil
}

// MultiLens runs one call per canonical region. A no-data signal, an empty
// parse or a failed call yields the region's placeholder lens.
func (s *Synthesizer) MultiLens(ctx context.Context, ref config.ModelRef, date time.Time, in Inputs) (digest.MultiLensAnalysis, error) {
	const stage = "multi_lens_analysis"
	combined := fmt.Sprintf("=== ECONOMICS ===\n%s\n\n=== MAINSTREAM ===\n%s\n\n=== ANALYSIS ===\n%s\n\n=== MATERIALIST ===\n%s",
		truncate(in.Economics, maxEconomicsInput),
		truncate(in.Mainstream, maxContextInput),
		truncate(in.Analysis, maxContextInput),
		truncate(in.Materialist, maxContextInput),
	)

	var parsed []digest.LensEntry
	for _, region := range taxonomy.Regions() {
		if err := ctx.Err(); err != nil {
			return digest.MultiLensAnalysis{}, err
		}
		prompt := fill(multiLensPrompt, "{region}", region, "{context}", combined, "{no_data}", digest.NoMultiLensDataSignal)
		text, err := s.generate(ctx, stage, prompt, ref)
		if err != nil {
			if ctx.Err() != nil {
				return digest.MultiLensAnalysis{}, ctx.Err()
			}
			logging.WarnWithContext(s.logger, "multi-lens generation failed for region", "region_generation_failed",
				logging.String("region", region),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "region receives placeholder lens"),
			)
			continue
		}
		if strings.Contains(text, digest.NoMultiLensDataSignal) {
			s.logger.Info("no relevant events for region", logging.String("stage", stage), logging.String("region", region))
			continue
		}
		var lenses []digest.Lens
		for _, section := range taxonomy.SplitSections(text, 3) {
			lenses = append(lenses, digest.Lens{Name: section.Heading, Analysis: section.Body})
		}
		if len(lenses) == 0 {
			s.logger.Info("lens parse produced nothing", logging.String("stage", stage), logging.String("region", region))
			continue
		}
		parsed = append(parsed, digest.LensEntry{Region: region, Lenses: lenses})
	}

	placeholders := 0
	entries := taxonomy.Complete(stage, parsed,
		func(e digest.LensEntry) string { return e.Region },
		func(e digest.LensEntry, region string) digest.LensEntry {
			e.Region = region
			return e
		},
		func(region string) digest.LensEntry {
			placeholders++
			return PlaceholderLensEntry(region)
		},
		s.logger,
	)
	s.metrics.Placeholders(stage, placeholders)
	return digest.MultiLensAnalysis{Date: date, Entries: entries}, nil
}

// PlaceholderLensEntry is the single status lens shown for a region without
// analysis.
func PlaceholderLensEntry(region string) digest.LensEntry {
	return digest.LensEntry{
		Region: region,
		Lenses: []digest.Lens{{Name: digest.LensPlaceholderName, Analysis: digest.LensPlaceholderText}},
	}
}

// dropQuoteLines removes lines that start with ">" after leading space.
func dropQuoteLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
