package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

const inDepthAnchor = "in-depth-analysis"

const navButtonStyle = "display: inline-block; padding: 6px 12px; margin: 4px; " +
	"background-color: #f8f9fa; border: 1px solid #ddd; border-radius: 5px; " +
	"text-decoration: none; color: #333; font-weight: 500; font-size: 0.9em;"

var articleTitleReplacer = strings.NewReplacer("|", "-", "[", "(", "]", ")")

// PostInput gathers everything the weekly post is assembled from.
type PostInput struct {
	Date      time.Time
	Briefing  digest.GlobalBriefing
	Lenses    digest.MultiLensAnalysis
	Articles  []digest.Article
	Sources   []config.Source
	Formatter config.Post
}

// WeeklyPost assembles the publishable post: front matter, region
// navigation, per-region narratives with lens dropdowns and ranked article
// links, an in-depth section for uncategorised articles, and a sources
// footer.
func WeeklyPost(in PostInput) Artifact {
	post := in.Formatter
	lines := []string{
		"---",
		"layout: " + post.Layout,
		fmt.Sprintf("title:  %s | %s", post.TitlePrefix, in.Date.Format("02 January 2006")),
		fmt.Sprintf("date:   %s %s %s", datePrefix(in.Date), post.PublishTime, post.UTCOffset),
		"categories: " + post.Categories,
		"---",
		"",
		navigation(),
		"",
	}

	briefings := make(map[string]digest.BriefingEntry, len(in.Briefing.Entries))
	for _, entry := range in.Briefing.Entries {
		briefings[entry.Region] = entry
	}
	lenses := make(map[string]digest.LensEntry, len(in.Lenses.Entries))
	for _, entry := range in.Lenses.Entries {
		lenses[entry.Region] = entry
	}
	byRegion := groupArticles(in.Articles)

	for _, region := range taxonomy.Regions() {
		briefing, hasBriefing := briefings[region]
		lensEntry, hasLenses := lenses[region]
		articles := byRegion[region]
		if !hasBriefing && !hasLenses && len(articles) == 0 {
			continue
		}

		lines = append(lines, fmt.Sprintf("# %s <a id='%s'></a>\n", region, taxonomy.Slug(region)))
		if hasBriefing {
			if text := CleanText(briefing.MainstreamNarrative); text != "" {
				lines = append(lines, fmt.Sprintf("**Mainstream Narrative:** %s\n", text))
			}
			lines = append(lines, "")
			if text := CleanText(briefing.StrategicAnalysis); text != "" {
				lines = append(lines, fmt.Sprintf("**Strategic Analysis:** %s\n", text))
			}
		}
		if hasLenses && len(lensEntry.Lenses) > 0 {
			for _, lens := range lensEntry.Lenses {
				lines = append(lines, dropdown("Lens: "+lens.Name, CleanText(lens.Analysis)))
			}
			lines = append(lines, "<br>\n")
		}
		if len(articles) > 0 {
			for _, article := range articles {
				lines = append(lines, articleLine(article))
			}
			lines = append(lines, "")
		}
	}

	if unknown := byRegion[taxonomy.Unknown]; len(unknown) > 0 {
		lines = append(lines, fmt.Sprintf("# In-Depth Analysis <a id='%s'></a>\n", inDepthAnchor))
		for _, article := range unknown {
			lines = append(lines, articleLine(article))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "---", sourcesFooter(in.Sources))
	return Artifact{Filename: WeeklyPostName(in.Date), Content: strings.Join(lines, "\n")}
}

// groupArticles buckets articles by canonical region, Unknown for anything
// else, each bucket sorted by rank then source.
func groupArticles(articles []digest.Article) map[string][]digest.Article {
	out := make(map[string][]digest.Article)
	for _, article := range articles {
		region, ok := taxonomy.Normalize(article.Region)
		if !ok {
			region = taxonomy.Unknown
		}
		out[region] = append(out[region], article)
	}
	for _, bucket := range out {
		SortByRank(bucket)
	}
	return out
}

// SortByRank orders articles by ascending rank, then source name. Missing
// ranks sort last.
func SortByRank(articles []digest.Article) {
	slices.SortStableFunc(articles, func(a, b digest.Article) int {
		if c := cmp.Compare(effectiveRank(a.Rank), effectiveRank(b.Rank)); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
}

func effectiveRank(rank int) int {
	if rank <= 0 {
		return 999
	}
	return rank
}

func articleLine(article digest.Article) string {
	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = "No Title"
	}
	source := article.Source
	if source == "" {
		source = "Unknown Source"
	}
	return fmt.Sprintf("* [`%s` %s](%s)", source, articleTitleReplacer.Replace(title), article.URL)
}

func navigation() string {
	regions := taxonomy.Regions()
	links := make([]string, 0, len(regions)+1)
	for _, region := range regions {
		links = append(links, fmt.Sprintf(`<a href="#%s" style="%s">%s</a>`, taxonomy.Slug(region), navButtonStyle, region))
	}
	links = append(links, fmt.Sprintf(`<a href="#%s" style="%s">In-Depth Analysis</a>`, inDepthAnchor, navButtonStyle))
	return `<div style="text-align: center; margin: 20px 0;">` + strings.Join(links, "\n") + "</div>"
}

func sourcesFooter(sources []config.Source) string {
	format := func(list []config.Source) string {
		parts := make([]string, len(list))
		for i, s := range list {
			parts[i] = link(s.Name, s.URL)
		}
		return strings.Join(parts, ", ")
	}
	lines := []string{h3("Sources")}
	if datapoints := config.FilterSources(sources, config.SourceDatapoint); len(datapoints) > 0 {
		lines = append(lines, "**Mainstream Narratives:** "+format(datapoints))
	}
	lines = append(lines, "")
	if analysis := config.FilterSources(sources, config.SourceAnalysis); len(analysis) > 0 {
		lines = append(lines, "**Strategic Analyses:** "+format(analysis))
	}
	return strings.Join(lines, "\n")
}
