package etl

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
)

// Stage files written into the run workspace, one per ETL step.
const (
	Stage1File = "stage_01_raw_articles_links.csv"
	Stage2File = "stage_02_enriched_articles_titles.csv"
	Stage3File = "stage_03_enriched_articles_regions.csv"
)

var (
	linkColumns   = []string{"source", "url", "type", "format", "rank"}
	titleColumns  = append(append([]string{}, linkColumns...), "title")
	regionColumns = append(append([]string{}, titleColumns...), "region")
)

// EncodeArticles renders articles as CSV with the given header.
func EncodeArticles(articles []digest.Article, columns []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	for _, a := range articles {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = field(a, col)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadArticles loads a stage file. Columns are matched by header name, so
// files from earlier steps load with empty Title and Region.
func ReadArticles(path string) ([]digest.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeArticles(f)
}

// DecodeArticles parses stage CSV content.
func DecodeArticles(r io.Reader) ([]digest.Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"source", "url"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	var articles []digest.Article
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rank, _ := strconv.Atoi(get("rank"))
		articles = append(articles, digest.Article{
			Source: get("source"),
			URL:    get("url"),
			Type:   get("type"),
			Format: get("format"),
			Rank:   rank,
			Title:  get("title"),
			Region: get("region"),
		})
	}
	return articles, nil
}

func field(a digest.Article, col string) string {
	switch col {
	case "source":
		return a.Source
	case "url":
		return a.URL
	case "type":
		return a.Type
	case "format":
		return a.Format
	case "rank":
		return strconv.Itoa(a.Rank)
	case "title":
		return a.Title
	case "region":
		return a.Region
	}
	return ""
}
