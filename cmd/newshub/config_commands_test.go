package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "generated", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Wrote sample sources")

	sourcesPath := filepath.Join(filepath.Dir(target), "sources.yaml")
	if _, err := config.LoadSources(sourcesPath); err != nil {
		t.Fatalf("sample sources do not load: %v", err)
	}

	env.cfg.Paths.SourcesFile = sourcesPath
	testsupport.WriteConfig(t, env.configPath, env.cfg)

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Sources: 4")
	requireContains(t, out, "Configuration valid")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "existing.toml")
	if err := os.WriteFile(target, []byte("# mine\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal, got %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "# mine\n" {
		t.Fatalf("existing file was modified: %q", data)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsMissingCredentials(t *testing.T) {
	t.Setenv("POE_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")
	env := setupCLITestEnv(t, testsupport.WithSampleSources())

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Missing credential: generation.poe_api_key")
	requireContains(t, out, "Missing credential: api_keys.youtube")
}

func TestConfigValidateRejectsBadSources(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSources(config.Source{
		Name: "Broken", URL: "ftp://example.com", Type: "opinion", Format: config.FormatWebpage, Rank: 1,
	}))

	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid sources to fail validation")
	}
	requireContains(t, err.Error(), "must be analysis or datapoint")
}
