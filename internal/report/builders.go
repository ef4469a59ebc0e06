package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
)

// SummariesDir holds the per-region intel brief reports.
const SummariesDir = "summaries"

// SummaryStyle names the per-article summary format in report titles.
const SummaryStyle = "intel_brief"

var (
	upper = cases.Upper(language.English)
	title = cases.Title(language.English)

	regionFileReplacer = strings.NewReplacer(" ", "-", "(", "", ")", "", "&", "and", "/", "-")
)

func datePrefix(date time.Time) string {
	return date.Format(DateLayout)
}

// MainstreamHeadlinesName is the phase 1 report filename.
func MainstreamHeadlinesName(date time.Time) string {
	return datePrefix(date) + "-mainstream_headlines.md"
}

// NarrativeName is the phase 2 report filename.
func NarrativeName(date time.Time) string {
	return datePrefix(date) + "-mainstream_narrative.md"
}

// LedgerName is the phase 3 report filename.
func LedgerName(date time.Time) string {
	return datePrefix(date) + "-global_economic_snapshot.md"
}

// AnalysisHeadlinesName is the phase 4 report filename.
func AnalysisHeadlinesName(date time.Time) string {
	return datePrefix(date) + "-analysis_headlines.md"
}

// StyleLabel turns a style key such as intel_brief into Intel-Brief.
func StyleLabel(style string) string {
	return strings.ReplaceAll(title.String(strings.ReplaceAll(style, "_", " ")), " ", "-")
}

// SummaryName is the per-region phase 5 report filename, relative to the
// workspace.
func SummaryName(date time.Time, region string) string {
	return fmt.Sprintf("%s/%s-%s-%s.md", SummariesDir, datePrefix(date), StyleLabel(SummaryStyle), regionFileReplacer.Replace(region))
}

// MaterialistName is the phase 6 report filename.
func MaterialistName(date time.Time) string {
	return datePrefix(date) + "-materialist_analysis.md"
}

// BriefingName is the phase 7 report filename.
func BriefingName(date time.Time) string {
	return datePrefix(date) + "-global_briefing.md"
}

// MultiLensName is the phase 8 report filename.
func MultiLensName(date time.Time) string {
	return datePrefix(date) + "-multi_lens_analysis.md"
}

// WeeklyPostName is the final post filename.
func WeeklyPostName(date time.Time) string {
	return datePrefix(date) + "-weekly-news.md"
}

func generatedLine(date time.Time) string {
	return fmt.Sprintf("*Generated on %s*", date.Format(time.RFC3339))
}

// MainstreamHeadlines renders the consolidated mainstream sources.
func MainstreamHeadlines(data digest.MainstreamHeadlines) Artifact {
	parts := []string{
		h1(fmt.Sprintf("Consolidated Mainstream Headlines (%s)", datePrefix(data.Date))),
		generatedLine(data.Date),
		"---",
	}
	if len(data.Entries) == 0 {
		parts = append(parts, "> No mainstream data found.")
	}
	for _, entry := range data.Entries {
		heading := fmt.Sprintf("%s [%s]", entry.SourceName, upper.String(entry.Format))
		var body string
		switch {
		case entry.Format == "youtube":
			body = bulletList(entry.Content)
		case len(entry.Content) > 0:
			body = entry.Content[0]
		default:
			body = "No content."
		}
		parts = append(parts, dropdown(heading, body))
	}
	return Artifact{Filename: MainstreamHeadlinesName(data.Date), Content: strings.Join(parts, "\n\n")}
}

// Narrative renders the mainstream narrative by region.
func Narrative(data digest.MainstreamNarrative) Artifact {
	lines := []string{
		h1(fmt.Sprintf("Mainstream Global Narrative (%s)", datePrefix(data.Date))),
		"> **Context:** A synthesis of major global headlines and official reporting.",
		"---",
		"",
	}
	if len(data.Entries) == 0 {
		lines = append(lines, "> No mainstream narrative generated.")
	}
	for _, entry := range data.Entries {
		lines = append(lines, h2(entry.Region), entry.Summary, "", "---", "")
	}
	return Artifact{Filename: NarrativeName(data.Date), Content: strings.Join(lines, "\n")}
}

// Ledger renders the economic snapshot.
func Ledger(data digest.GeopoliticalLedger) Artifact {
	lines := []string{
		"> **Generated Artifact:** Geopolitical Ledger",
		"> **Date:** " + data.Date.Format(time.RFC3339),
		"---",
		"",
	}
	if strings.TrimSpace(data.Content) == "" {
		lines = append(lines, digest.LedgerUnavailable)
	} else {
		lines = append(lines, data.Content)
	}
	return Artifact{Filename: LedgerName(data.Date), Content: strings.Join(lines, "\n")}
}

// AnalysisHeadlines renders article titles grouped by source.
func AnalysisHeadlines(data digest.AnalysisHeadlines) Artifact {
	parts := []string{
		h1(fmt.Sprintf("Consolidated Analysis Headlines (%s)", datePrefix(data.Date))),
		generatedLine(data.Date),
		"---",
	}
	if len(data.Groups) == 0 {
		parts = append(parts, digest.NoAnalysisHeadlinesMessage)
	}
	for _, group := range data.Groups {
		parts = append(parts, dropdown(fmt.Sprintf("%s (%d)", group.Source, len(group.Titles)), bulletList(group.Titles)))
	}
	return Artifact{Filename: AnalysisHeadlinesName(data.Date), Content: strings.Join(parts, "\n\n")}
}

// RegionSummary renders one region's intel briefs. The first heading is
// the region name; later phases read it back to recover the region.
func RegionSummary(date time.Time, region string, briefs []digest.Brief) Artifact {
	lines := []string{h1(region), ""}
	for _, brief := range briefs {
		summary := brief.Summary
		if strings.TrimSpace(summary) == "" {
			summary = "_No summary generated_"
		}
		lines = append(lines,
			h2(brief.Title),
			"**Collected at:** "+brief.CollectedAt.Format(time.RFC3339),
			"",
			"**Source:** "+brief.Source,
			"",
			"**URL:** "+brief.URL,
			"",
			summary,
			"---",
			"",
		)
	}
	return Artifact{Filename: SummaryName(date, region), Content: strings.Join(lines, "\n")}
}

// Materialist renders the per-region materialist analyses.
func Materialist(data digest.MaterialistAnalysis) Artifact {
	parts := []string{
		h1(fmt.Sprintf("Materialist Analysis Report (%s)", datePrefix(data.Date))),
		generatedLine(data.Date),
		"---",
	}
	if len(data.Entries) == 0 {
		parts = append(parts, "> No materialist analyses generated.")
	}
	for _, entry := range data.Entries {
		parts = append(parts, h1(entry.Region), entry.Analysis, "---")
	}
	return Artifact{Filename: MaterialistName(data.Date), Content: strings.Join(parts, "\n\n")}
}

// Briefing renders the two-part global briefing.
func Briefing(data digest.GlobalBriefing) Artifact {
	lines := []string{
		h1(fmt.Sprintf("Global Strategic Briefing (%s)", datePrefix(data.Date))),
		"> **Synthesis of:** Mainstream, Analysis, Economic, and Materialist Intelligence.",
		"---",
		"",
	}
	if len(data.Entries) == 0 {
		lines = append(lines, "> No briefing generated.")
	}
	for _, entry := range data.Entries {
		lines = append(lines,
			h2(entry.Region),
			"**Mainstream Narrative:**",
			blockquote(entry.MainstreamNarrative),
			"",
			"**Strategic Analysis:**",
			entry.StrategicAnalysis,
			"",
			"---",
			"",
		)
	}
	return Artifact{Filename: BriefingName(data.Date), Content: strings.Join(lines, "\n")}
}

// MultiLens renders each region's lenses as collapsible blocks.
func MultiLens(data digest.MultiLensAnalysis) Artifact {
	lines := []string{
		h1(fmt.Sprintf("Multi-Lens Strategic Analysis (%s)", datePrefix(data.Date))),
		"> **Methodology:** Refracting global events through distinct analytical lenses.",
		"---",
		"",
	}
	if len(data.Entries) == 0 {
		lines = append(lines, "> No analysis generated.")
	}
	for _, entry := range data.Entries {
		lines = append(lines, h2(entry.Region))
		for _, lens := range entry.Lenses {
			lines = append(lines, dropdown("Lens: "+lens.Name, lens.Analysis))
		}
		lines = append(lines, "", "---", "")
	}
	return Artifact{Filename: MultiLensName(data.Date), Content: strings.Join(lines, "\n")}
}
