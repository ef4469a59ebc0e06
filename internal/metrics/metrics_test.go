package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ExtractionAttempt("transcript-api", "deterministic-error")
	r.ExtractionAttempt("community-transcript", "insufficient")
	r.ExtractionAttempt("community-transcript", "insufficient")
	r.GenerationCall("poe", time.Second, nil)
	r.GenerationCall("poe", time.Second, errors.New("quota"))

	if got := testutil.ToFloat64(r.extractionAttempts.WithLabelValues("community-transcript", "insufficient")); got != 2 {
		t.Fatalf("insufficient attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.generationCalls.WithLabelValues("poe", "error")); got != 1 {
		t.Fatalf("poe errors = %v, want 1", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ExtractionAttempt("page-scrape", "success")
	r.ExtractionResult("page", true)
	r.GenerationCall("ollama", time.Millisecond, nil)
	r.Phase("News ETL", "checkpointed", time.Second)
	r.Placeholders("global_briefing", 3)
	if err := r.WriteFile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatalf("nil WriteFile returned error: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	r := New()
	r.Phase("Final Assembly", "checkpointed", 2*time.Second)
	r.Placeholders("multi_lens_analysis", 4)
	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`newshub_phase_duration_seconds{phase="Final Assembly",state="checkpointed"} 2`,
		`newshub_synthesis_placeholders_total{stage="multi_lens_analysis"} 4`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, text)
		}
	}
}
