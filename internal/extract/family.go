package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Family groups URLs that share a tier list.
type Family string

const (
	FamilyVideo Family = "video"
	FamilyPage  Family = "page"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// FamilyOf reports which tier list serves raw.
func FamilyOf(raw string) Family {
	if IsVideoURL(raw) {
		return FamilyVideo
	}
	return FamilyPage
}

// IsVideoURL reports whether raw points at a single YouTube video.
func IsVideoURL(raw string) bool {
	_, ok := VideoID(raw)
	return ok
}

// VideoID extracts the video identifier from watch, shorts, live, embed and
// youtu.be URLs on desktop and mobile hosts.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case len(segments) == 1 && segments[0] == "watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "shorts" || segments[0] == "live" || segments[0] == "embed"):
			id = segments[1]
		}
	default:
		return "", false
	}
	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
