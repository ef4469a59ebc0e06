package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
)

func TestSampleSourcesLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := config.CreateSampleSources(path); err != nil {
		t.Fatalf("CreateSampleSources returned error: %v", err)
	}
	sources, err := config.LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources returned error: %v", err)
	}
	if len(config.FilterSources(sources, config.SourceAnalysis)) == 0 {
		t.Fatal("expected at least one analysis source")
	}
	if len(config.FilterSources(sources, config.SourceDatapoint)) == 0 {
		t.Fatal("expected at least one datapoint source")
	}
}

func TestLoadSourcesReportsEveryProblem(t *testing.T) {
	body := `sources:
  - name: Broken Channel
    url: https://www.youtube.com/c/legacy
    type: analysis
    format: youtube
    rank: 1
  - name: ""
    url: ftp://example.com
    type: opinion
    format: webpage
    rank: 0
`
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	_, err := config.LoadSources(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"sources[0].url",
		"sources[1].name",
		"sources[1].type",
		"sources[1].url",
		"sources[1].rank",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidateSourcesRejectsDuplicates(t *testing.T) {
	src := config.Source{Name: "A", URL: "https://a.example", Type: "analysis", Format: "webpage", Rank: 1}
	if err := config.ValidateSources([]config.Source{src, src}); err == nil || !strings.Contains(err.Error(), "duplicates") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
