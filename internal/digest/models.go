// Package digest defines the records each phase checkpoints and the report
// builders render. Every time field serializes as RFC 3339.
package digest

import "time"

// Placeholder texts shown in place of generated content.
const (
	NarrativePlaceholder       = "*No mainstream reporting found for this region.*"
	BriefingNarrativeFallback  = "*No intelligence found for this region in the current cycle.*"
	BriefingAnalysisFallback   = "*No strategic analysis generated.*"
	MaterialistPlaceholder     = "*No materialist analysis generated for this region.*"
	LensPlaceholderName        = "System Status"
	LensPlaceholderText        = "*No multi-lens analysis generated for this region.*"
	SummaryPlaceholder         = "could not summarize, see original link"
	GenerationFailedMarker     = "**GENERATION FAILED**"
	LedgerUnavailable          = "> **Error:** No data generated."
	BriefingNarrativeMissing   = "_No narrative extracted._"
	BriefingAnalysisMissing    = "_No analysis extracted._"
	NoMultiLensDataSignal      = "NO_DATA_FOUND"
	NoAnalysisHeadlinesMessage = "> No analysis data found."
)

// SourceEntry is one mainstream source's contribution: video titles for a
// channel, or the extracted page text for a web source.
type SourceEntry struct {
	SourceName string   `json:"source_name"`
	Format     string   `json:"format"`
	Content    []string `json:"content"`
}

// MainstreamHeadlines is the phase 1 checkpoint.
type MainstreamHeadlines struct {
	Date    time.Time     `json:"date"`
	Entries []SourceEntry `json:"entries"`
}

// NarrativeEntry is one region of the mainstream narrative.
type NarrativeEntry struct {
	Region  string `json:"region"`
	Summary string `json:"summary"`
}

// MainstreamNarrative is the phase 2 checkpoint.
type MainstreamNarrative struct {
	Date    time.Time        `json:"date"`
	Entries []NarrativeEntry `json:"entries"`
}

// GeopoliticalLedger is the phase 3 checkpoint: the month's economic
// snapshot table as generated markdown.
type GeopoliticalLedger struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

// Article is one row of the ETL CSVs. Title and Region are empty until the
// corresponding ETL step has run.
type Article struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Type   string `json:"type"`
	Format string `json:"format"`
	Rank   int    `json:"rank"`
	Title  string `json:"title,omitempty"`
	Region string `json:"region,omitempty"`
}

// SourceHeadlines groups article titles from one analysis source.
type SourceHeadlines struct {
	Source string   `json:"source"`
	Rank   int      `json:"rank"`
	Titles []string `json:"titles"`
}

// AnalysisHeadlines is the consolidated view of the ETL output.
type AnalysisHeadlines struct {
	Date   time.Time         `json:"date"`
	Groups []SourceHeadlines `json:"groups"`
}

// NewsETL is the phase 4 checkpoint.
type NewsETL struct {
	Date      time.Time         `json:"date"`
	Articles  int               `json:"articles"`
	ByRegion  map[string]int    `json:"by_region"`
	Headlines AnalysisHeadlines `json:"headlines"`
}

// BriefStatus records how a per-article summary was produced.
type BriefStatus string

const (
	BriefSummarized  BriefStatus = "summarized"
	BriefPlaceholder BriefStatus = "placeholder"
	BriefFailed      BriefStatus = "failed"
)

// Brief is one summarized article.
type Brief struct {
	Title       string      `json:"title"`
	Source      string      `json:"source"`
	URL         string      `json:"url"`
	CollectedAt time.Time   `json:"collected_at"`
	Status      BriefStatus `json:"status"`
	Summary     string      `json:"summary"`
}

// RegionBriefs holds the briefs for one region. Regions without articles
// carry an empty list.
type RegionBriefs struct {
	Region string  `json:"region"`
	Briefs []Brief `json:"briefs"`
}

// Summarization is the phase 5 checkpoint. Regions always holds every
// canonical region in order; Unknown articles are kept separately.
type Summarization struct {
	Date    time.Time      `json:"date"`
	Regions []RegionBriefs `json:"regions"`
	Unknown []Brief        `json:"unknown,omitempty"`
}

// Counts tallies briefs by status across regions and Unknown.
func (s Summarization) Counts() map[BriefStatus]int {
	counts := make(map[BriefStatus]int, 3)
	for _, region := range s.Regions {
		for _, brief := range region.Briefs {
			counts[brief.Status]++
		}
	}
	for _, brief := range s.Unknown {
		counts[brief.Status]++
	}
	return counts
}

// MaterialistEntry is one region of the materialist analysis.
type MaterialistEntry struct {
	Region   string `json:"region"`
	Analysis string `json:"analysis"`
}

// MaterialistAnalysis is the phase 6 checkpoint.
type MaterialistAnalysis struct {
	Date    time.Time          `json:"date"`
	Entries []MaterialistEntry `json:"entries"`
}

// BriefingEntry is one region of the global briefing.
type BriefingEntry struct {
	Region              string `json:"region"`
	MainstreamNarrative string `json:"mainstream_narrative"`
	StrategicAnalysis   string `json:"strategic_analysis"`
}

// GlobalBriefing is the phase 7 checkpoint.
type GlobalBriefing struct {
	Date    time.Time       `json:"date"`
	Entries []BriefingEntry `json:"entries"`
}

// Lens is one analytical perspective on a region.
type Lens struct {
	Name     string `json:"name"`
	Analysis string `json:"analysis"`
}

// LensEntry is one region of the multi-lens analysis.
type LensEntry struct {
	Region string `json:"region"`
	Lenses []Lens `json:"lenses"`
}

// MultiLensAnalysis is the phase 8 checkpoint.
type MultiLensAnalysis struct {
	Date    time.Time   `json:"date"`
	Entries []LensEntry `json:"entries"`
}

// FinalPost is the phase 9 checkpoint.
type FinalPost struct {
	Date     time.Time `json:"date"`
	Filename string    `json:"filename"`
	Articles int       `json:"articles"`
}
