package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lizzypokerface/news-hub-aggregator/internal/config"
	"github.com/lizzypokerface/news-hub-aggregator/internal/digest"
	"github.com/lizzypokerface/news-hub-aggregator/internal/extract/browser"
	"github.com/lizzypokerface/news-hub-aggregator/internal/generation"
	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
	"github.com/lizzypokerface/news-hub-aggregator/internal/workspace"
)

var runDate = time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

type fakePage struct {
	titles   map[string]string
	visited  []string
	headless bool
	closed   bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) TranscriptText(context.Context, string, string) (string, error) {
	return "", errors.New("not used")
}

func (p *fakePage) OuterHTML(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (p *fakePage) ElementText(_ context.Context, url, selector string) (string, error) {
	p.visited = append(p.visited, url)
	if selector != YouTubeTitleSelector {
		return "", fmt.Errorf("unexpected selector %q", selector)
	}
	if title, ok := p.titles[url]; ok {
		return title, nil
	}
	return "", errors.New("title element not found")
}

func (p *fakePage) Close() { p.closed = true }

type pages struct {
	titles map[string]string
	opened []*fakePage
}

func (f *pages) open(_ context.Context, opts browser.Options) (browser.Page, error) {
	page := &fakePage{titles: f.titles, headless: opts.Headless}
	f.opened = append(f.opened, page)
	return page, nil
}

// operator simulates a person pasting links into the links file when asked.
type operator struct {
	linksFile string
	links     map[string][]string
	titles    map[string]string
	confirms  []string
	asked     []string
}

func (o *operator) Confirm(_ context.Context, title, _ string) error {
	o.confirms = append(o.confirms, title)
	for source, links := range o.links {
		if strings.Contains(title, source) {
			return os.WriteFile(o.linksFile, []byte("\n"+strings.Join(links, "\n\n")+"\n  \n"), 0o644)
		}
	}
	return nil
}

func (o *operator) Title(_ context.Context, url string) (string, error) {
	o.asked = append(o.asked, url)
	return o.titles[url], nil
}

type scriptedGenerator struct {
	answers map[string]string
	calls   int
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, provider generation.Provider, model string) (string, error) {
	g.calls++
	if provider != generation.Ollama || model != "qwen2.5:14b" {
		return "", fmt.Errorf("unexpected model %s/%s", provider, model)
	}
	for marker, answer := range g.answers {
		if strings.Contains(prompt, marker) {
			if answer == "ERROR" {
				return "", errors.New("backend unavailable")
			}
			return answer, nil
		}
	}
	return "Atlantis", nil
}

type failingPrompter struct{}

func (failingPrompter) Confirm(context.Context, string, string) error { return errors.New("prompted") }
func (failingPrompter) Title(context.Context, string) (string, error) {
	return "", errors.New("prompted")
}

func newWorkspace(t *testing.T) *workspace.Manager {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), runDate, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ws
}

func TestRunCollectsTitlesAndRegions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			_, _ = io.WriteString(w, "<html><head><title>  Port Deal Signed </title></head><body>x</body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ws := newWorkspace(t)
	linksFile := filepath.Join(t.TempDir(), "inputs", "input_article_links.txt")
	videoURL := "https://www.youtube.com/watch?v=abcdefghijk"
	sources := []config.Source{
		{Name: "Video Analyst", URL: "https://www.youtube.com/@analyst/videos", Type: config.SourceAnalysis, Format: config.FormatYouTube, Rank: 2},
		{Name: "Web Analyst", URL: "https://web.example.com", Type: config.SourceAnalysis, Format: config.FormatWebpage, Rank: 1},
		{Name: "Wire", URL: "https://wire.example.com", Type: config.SourceDatapoint, Format: config.FormatWebpage, Rank: 1},
	}
	op := &operator{
		linksFile: linksFile,
		links: map[string][]string{
			"Video Analyst": {videoURL},
			"Web Analyst":   {srv.URL + "/good", srv.URL + "/missing"},
		},
		titles: map[string]string{srv.URL + "/missing": "Typed Title"},
	}
	gen := &scriptedGenerator{answers: map[string]string{
		"Port Deal Signed": " \"middle east\" ",
		"Typed Title":      "ERROR",
		"Video Title":      "China",
	}}
	fake := &pages{titles: map[string]string{videoURL: "Video Title"}}

	pipeline := New(ws, Settings{
		Sources:        sources,
		LinksFile:      linksFile,
		Categoriser:    config.ModelRef{Provider: "ollama", Model: "qwen2.5:14b"},
		ResetThreshold: 25,
	}, gen, op, WithOpener(fake.open), WithHTTPClient(srv.Client()), WithOutput(io.Discard))

	got, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(op.confirms) != 2 {
		t.Fatalf("expected one confirmation per analysis source, got %v", op.confirms)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %+v", got)
	}
	want := []digest.Article{
		{Source: "Video Analyst", URL: videoURL, Type: "analysis", Format: "youtube", Rank: 2, Title: "Video Title", Region: "China"},
		{Source: "Web Analyst", URL: srv.URL + "/good", Type: "analysis", Format: "webpage", Rank: 1, Title: "Port Deal Signed", Region: "West Asia (Middle East)"},
		{Source: "Web Analyst", URL: srv.URL + "/missing", Type: "analysis", Format: "webpage", Rank: 1, Title: "Typed Title", Region: taxonomy.Unknown},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("article %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if len(op.asked) != 1 || op.asked[0] != srv.URL+"/missing" {
		t.Fatalf("expected one manual title prompt, got %v", op.asked)
	}
	if data, _ := os.ReadFile(linksFile); len(data) != 0 {
		t.Fatalf("expected links file truncated, got %q", data)
	}
	for _, name := range []string{Stage1File, Stage2File, Stage3File} {
		if _, err := os.Stat(ws.Path(name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	for _, page := range fake.opened {
		if !page.closed {
			t.Fatalf("expected every browser session closed")
		}
	}

	// A second run reads the stage files without prompting or generating.
	again := New(ws, Settings{Sources: sources, LinksFile: linksFile}, &scriptedGenerator{}, failingPrompter{},
		WithOpener(func(context.Context, browser.Options) (browser.Page, error) {
			return nil, errors.New("browser must not start")
		}),
		WithOutput(io.Discard),
	)
	resumed, err := again.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on resume: %v", err)
	}
	for i := range want {
		if resumed[i] != want[i] {
			t.Fatalf("resumed article %d: expected %+v, got %+v", i, want[i], resumed[i])
		}
	}
}

func TestRunWithoutAnalysisSourcesWritesEmptyStages(t *testing.T) {
	ws := newWorkspace(t)
	gen := &scriptedGenerator{}
	pipeline := New(ws, Settings{
		Sources:   []config.Source{{Name: "Wire", URL: "https://wire.example.com", Type: config.SourceDatapoint, Format: config.FormatWebpage, Rank: 1}},
		LinksFile: filepath.Join(t.TempDir(), "links.txt"),
	}, gen, failingPrompter{}, WithOutput(io.Discard))

	got, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || gen.calls != 0 {
		t.Fatalf("expected no articles and no calls, got %d articles %d calls", len(got), gen.calls)
	}
	articles, err := ReadArticles(ws.Path(Stage3File))
	if err != nil || len(articles) != 0 {
		t.Fatalf("expected empty stage 3 file, got %v err %v", articles, err)
	}
}

func TestOperatorAbortFailsStep(t *testing.T) {
	ws := newWorkspace(t)
	pipeline := New(ws, Settings{
		Sources:   []config.Source{{Name: "Web", URL: "https://web.example.com", Type: config.SourceAnalysis, Format: config.FormatWebpage, Rank: 1}},
		LinksFile: filepath.Join(t.TempDir(), "links.txt"),
	}, &scriptedGenerator{}, failingPrompter{}, WithOpener((&pages{}).open), WithOutput(io.Discard))

	if _, err := pipeline.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(ws.Path(Stage1File)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stage 1 must not be written after an abort")
	}
}

func TestDecodeArticlesByHeaderName(t *testing.T) {
	input := "url,source,rank,title\nhttps://a.example.com,\"Outlet, Inc\",x,\"Say \"\"hi\"\"\"\n"
	got, err := DecodeArticles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := digest.Article{Source: "Outlet, Inc", URL: "https://a.example.com", Title: `Say "hi"`}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if _, err := DecodeArticles(strings.NewReader("title\nx\n")); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}
