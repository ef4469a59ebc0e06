package headlines

import (
	"slices"
	"strings"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/report"
)

// Analysis groups article titles by source, ordered by rank and then
// source name. Titles keep their collection order within a source.
func Analysis(date time.Time, articles []digest.Article) digest.AnalysisHeadlines {
	sorted := slices.Clone(articles)
	report.SortByRank(sorted)

	out := digest.AnalysisHeadlines{Date: date}
	index := map[string]int{}
	for _, article := range sorted {
		title := strings.TrimSpace(article.Title)
		if title == "" {
			title = "No Title"
		}
		i, ok := index[article.Source]
		if !ok {
			i = len(out.Groups)
			index[article.Source] = i
			out.Groups = append(out.Groups, digest.SourceHeadlines{Source: article.Source, Rank: article.Rank})
		}
		out.Groups[i].Titles = append(out.Groups[i].Titles, title)
	}
	return out
}
