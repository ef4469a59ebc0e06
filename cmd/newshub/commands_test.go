package main

import (
	"strings"
	"testing"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/phases"
	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
	"github.com/lizzypokerface/news-hub-aggregator/internal/testsupport"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

func TestStatusShowsCheckpointedPhases(t *testing.T) {
	env := setupCLITestEnv(t)

	date := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.Local)
	ws, err := workspace.New(env.cfg.Paths.OutputDir, date, logging.NewNop())
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	ws.SaveCheckpoint(phases.KeyMainstreamHeadlines, map[string]string{"date": "2026-03-08"})
	ws.SaveCheckpoint(phases.KeyMainstreamNarrative, map[string]string{"date": "2026-03-08"})

	out, _, err := runCLI(t, []string{"status", "--date", "2026-03-08"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, ws.Dir())
	requireContains(t, out, phases.KeyFinalAssembly)
	requireContains(t, out, "2 of 9 phases checkpointed")
	if got := strings.Count(out, "done (checkpoint)"); got != 2 {
		t.Fatalf("expected 2 checkpointed rows, got %d\n%s", got, out)
	}
}

func TestStatusRejectsMalformedDate(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"status", "--date", "08/03/2026"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("expected date error, got %v", err)
	}
}

func TestRunFailsWithoutSourcesFile(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--date", "2026-03-08"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail without a sources file")
	}
	requireContains(t, err.Error(), "read sources file")
}

func TestRunRefusesLockedWorkspace(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSampleSources())

	date := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.Local)
	ws, err := workspace.New(env.cfg.Paths.OutputDir, date, logging.NewNop())
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	release, err := ws.Lock()
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()

	_, _, err = runCLI(t, []string{"run", "--date", "2026-03-08"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another run") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestParseRunDate(t *testing.T) {
	now := time.Date(2026, time.October, 17, 15, 4, 5, 0, time.Local)
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty means today", value: "", want: time.Date(2026, time.October, 17, 0, 0, 0, 0, time.Local)},
		{name: "explicit", value: "2026-03-08", want: time.Date(2026, time.March, 8, 0, 0, 0, 0, time.Local)},
		{name: "trimmed", value: " 2026-03-08 ", want: time.Date(2026, time.March, 8, 0, 0, 0, 0, time.Local)},
		{name: "wrong layout", value: "2026/03/08", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRunDate(tt.value, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderResults(t *testing.T) {
	out := renderResults([]pipeline.Result{
		{Name: "Mainstream Headlines", Key: phases.KeyMainstreamHeadlines, State: pipeline.Checkpointed, Duration: 1500 * time.Millisecond, Reports: []string{"a.md"}},
		{Name: "News ETL", Key: phases.KeyNewsETL, State: pipeline.NotStarted},
	})
	requireContains(t, out, "Mainstream Headlines")
	requireContains(t, out, "1.5s")
	requireContains(t, out, "pending")
	requireContains(t, out, "checkpointed")
}

func TestVersionSkipsConfig(t *testing.T) {
	t.Setenv("NEWSHUB_CONFIG", "/nonexistent/dir/config.toml")
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "newshub ")
}

func TestPreviewTruncatesRunes(t *testing.T) {
	text := strings.Repeat("é", extractPreviewRunes+10)
	got := preview(text, false)
	if n := len([]rune(got)); n != extractPreviewRunes+1 {
		t.Fatalf("expected %d runes, got %d", extractPreviewRunes+1, n)
	}
	if preview(text, true) != text {
		t.Fatal("full preview should not truncate")
	}
}
