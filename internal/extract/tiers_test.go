package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abcDEF12345", "abcDEF12345", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/@channel/videos", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"not a url", "", false},
	}
	for _, tt := range tests {
		id, ok := VideoID(tt.url)
		if ok != tt.want || id != tt.id {
			t.Fatalf("VideoID(%q) = %q, %v; want %q, %v", tt.url, id, ok, tt.id, tt.want)
		}
	}
	if FamilyOf("https://youtu.be/dQw4w9WgXcQ") != FamilyVideo {
		t.Fatalf("expected youtu.be link to be a video")
	}
	if FamilyOf("https://news.example.com/story") != FamilyPage {
		t.Fatalf("expected article link to be a page")
	}
}

func TestTranscriptAPITierRequestAndTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Basic secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var body transcriptAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.IDs) != 1 || body.IDs[0] != "dQw4w9WgXcQ" {
			t.Errorf("unexpected ids %v", body.IDs)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"dQw4w9WgXcQ","tracks":[{"language":"en","transcript":[{"text":"first line"},{"text":" second line "}]}]}]`)
	}))
	defer server.Close()

	tier := NewTranscriptAPITier(server.URL, "secret", 0, server.Client())
	got, err := tier.Fetch(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first line second line" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestTranscriptAPITierClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		deterministic bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, deterministic: false},
		{name: "server error", status: http.StatusBadGateway, deterministic: false},
		{name: "unauthorized", status: http.StatusUnauthorized, deterministic: true},
		{name: "not found", status: http.StatusNotFound, deterministic: true},
		{name: "no transcript", status: http.StatusOK, body: `[{"id":"dQw4w9WgXcQ","text":""}]`, deterministic: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			tier := NewTranscriptAPITier(server.URL, "secret", 0, server.Client())
			_, err := tier.Fetch(context.Background(), videoURL)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := services.IsDeterministic(err); got != tt.deterministic {
				t.Fatalf("IsDeterministic = %v, want %v (err=%v)", got, tt.deterministic, err)
			}
		})
	}
}

func TestTranscriptAPITierWithoutTokenSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	tier := NewTranscriptAPITier(server.URL, "", 0, server.Client())
	_, err := tier.Fetch(context.Background(), videoURL)
	if !services.IsDeterministic(err) {
		t.Fatalf("expected deterministic error, got %v", err)
	}
	if called {
		t.Fatalf("expected no request without a token")
	}
}

func TestCommunityTranscriptTier(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
				t.Errorf("unexpected video id %q", r.URL.Query().Get("v"))
			}
			tracks := fmt.Sprintf(`[{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},`+
				`{"baseUrl":"%[1]s/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"},`+
				`{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en","name":{"runs":[{"text":"English"}]}}]`, server.URL)
			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s,"audioTracks":[]}}};</script></html>`, tracks)
		case "/timedtext":
			if r.URL.Query().Get("lang") != "en" || r.URL.Query().Get("kind") != "" {
				t.Errorf("expected manual English track, got %s", r.URL.RawQuery)
			}
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript>`+
				`<text start="0" dur="1.5">It&amp;#39;s a   test</text>`+
				`<text start="1.5" dur="2">of captions &amp;amp; more</text></transcript>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tier := NewCommunityTranscriptTier(server.URL+"/watch?v=", "test-agent", server.Client())
	got, err := tier.Fetch(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "It's a test of captions & more" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestCommunityTranscriptTierWithoutCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</script></html>`)
	}))
	defer server.Close()

	tier := NewCommunityTranscriptTier(server.URL+"/watch?v=", "", server.Client())
	_, err := tier.Fetch(context.Background(), videoURL)
	if !services.IsDeterministic(err) {
		t.Fatalf("expected deterministic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "transcripts disabled") {
		t.Fatalf("unexpected error text %v", err)
	}
}

func TestDocumentTitleAndTimestamps(t *testing.T) {
	if got := DocumentTitle(`<html><head><title>  Breaking &amp; News
</title></head></html>`); got != "Breaking & News" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := DocumentTitle(`<html><body>no title</body></html>`); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
	if got := StripTimestamps("00:00:01.000 a 00:10:02.500 b"); got != "a b" {
		t.Fatalf("unexpected stripped text %q", got)
	}
}
