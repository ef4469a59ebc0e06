package extract

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// DefaultWatchURL is the public watch page prefix read by the caption tier.
const DefaultWatchURL = "https://www.youtube.com/watch?v="

const captionTracksKey = `"captionTracks":`

// CommunityTranscriptTier is tier 1: the caption track advertised on the
// public watch page.
type CommunityTranscriptTier struct {
	watchURL  string
	userAgent string
	client    *http.Client
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// NewCommunityTranscriptTier builds tier 1. watchURL is the prefix the video
// id is appended to; empty selects DefaultWatchURL.
func NewCommunityTranscriptTier(watchURL, userAgent string, client *http.Client) *CommunityTranscriptTier {
	if strings.TrimSpace(watchURL) == "" {
		watchURL = DefaultWatchURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &CommunityTranscriptTier{watchURL: watchURL, userAgent: userAgent, client: client}
}

// Name identifies the tier in logs and metrics.
func (t *CommunityTranscriptTier) Name() string { return "community-transcript" }

// Fetch reads the caption track list from the watch page and downloads the
// preferred track.
func (t *CommunityTranscriptTier) Fetch(ctx context.Context, url string) (string, error) {
	id, ok := VideoID(url)
	if !ok {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "no video id in url", nil)
	}
	page, err := t.get(ctx, t.watchURL+id)
	if err != nil {
		return "", err
	}
	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "decode caption tracks", err)
	}
	if len(tracks) == 0 {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "transcripts disabled for video "+id, nil)
	}
	track := preferredTrack(tracks)

	doc, err := t.get(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}
	var tt timedText
	if err := xml.Unmarshal([]byte(doc), &tt); err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "decode timed text", err)
	}
	parts := make([]string, 0, len(tt.Texts))
	for _, node := range tt.Texts {
		// Caption bodies arrive double-escaped; the XML decoder removes one layer.
		text := strings.TrimSpace(html.UnescapeString(node.Body))
		if text != "" {
			parts = append(parts, strings.Join(strings.Fields(text), " "))
		}
	}
	return strings.Join(parts, " "), nil
}

func (t *CommunityTranscriptTier) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", services.Wrap(services.ErrDeterministic, "extraction", t.Name(), "build request", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	resp, err := t.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", t.Name(), "read response", err)
	}
	if err := classifyHTTPStatus(t.Name(), resp.StatusCode); err != nil {
		return "", err
	}
	return string(body), nil
}

// parseCaptionTracks decodes the JSON array that follows the captionTracks
// key in the embedded player response. A page without the key has no
// captions.
func parseCaptionTracks(page string) ([]captionTrack, error) {
	idx := strings.Index(page, captionTracksKey)
	if idx < 0 {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(page[idx+len(captionTracksKey):]))
	var tracks []captionTrack
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("caption track list: %w", err)
	}
	out := tracks[:0]
	for _, track := range tracks {
		if strings.TrimSpace(track.BaseURL) != "" {
			out = append(out, track)
		}
	}
	return out, nil
}

// preferredTrack picks a manual English track, then any English track, then
// the first listed.
func preferredTrack(tracks []captionTrack) captionTrack {
	for _, track := range tracks {
		if isEnglish(track.LanguageCode) && track.Kind != "asr" {
			return track
		}
	}
	for _, track := range tracks {
		if isEnglish(track.LanguageCode) {
			return track
		}
	}
	return tracks[0]
}

func isEnglish(code string) bool {
	code = strings.ToLower(code)
	return code == "en" || strings.HasPrefix(code, "en-")
}
