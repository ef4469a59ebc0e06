package headlines

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

// maxPlaylistItems bounds how far back one channel's uploads are read.
const maxPlaylistItems = 50

var channelHandlePattern = regexp.MustCompile(`youtube\.com/(@[A-Za-z0-9_.-]+)`)

// ChannelHandle extracts the @handle from a channel URL such as
// https://www.youtube.com/@name/videos.
func ChannelHandle(channelURL string) (string, bool) {
	m := channelHandlePattern.FindStringSubmatch(channelURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTubeLister reads recent upload titles through the YouTube Data API.
type YouTubeLister struct {
	svc *youtube.Service
}

// NewYouTubeLister builds a lister authenticated with an API key. Extra
// client options (endpoint, HTTP client) are passed through.
func NewYouTubeLister(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeLister, error) {
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mainstream_headlines", "youtube client", "api_keys.youtube is empty", nil)
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mainstream_headlines", "youtube client", "create service", err)
	}
	return &YouTubeLister{svc: svc}, nil
}

// RecentTitles returns titles of uploads published at or after since, in
// playlist order.
func (l *YouTubeLister) RecentTitles(ctx context.Context, handle string, since time.Time) ([]string, error) {
	channels, err := l.svc.Channels.List([]string{"contentDetails"}).ForHandle(handle).Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("channel lookup", err)
	}
	if len(channels.Items) == 0 || channels.Items[0].ContentDetails == nil || channels.Items[0].ContentDetails.RelatedPlaylists == nil {
		return nil, services.Wrap(services.ErrNotFound, "mainstream_headlines", "channel lookup", "no channel for handle "+handle, nil)
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	items, err := l.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(uploads).
		MaxResults(maxPlaylistItems).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError("playlist items", err)
	}

	var titles []string
	for _, item := range items.Items {
		if item.Snippet == nil {
			continue
		}
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil || published.Before(since) {
			continue
		}
		titles = append(titles, item.Snippet.Title)
	}
	return titles, nil
}

func classifyAPIError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		marker := services.ErrDeterministic
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			marker = services.ErrTransient
		}
		return services.Wrap(marker, "mainstream_headlines", op, fmt.Sprintf("youtube api status %d", apiErr.Code), err)
	}
	return services.Wrap(services.ErrTransient, "mainstream_headlines", op, "youtube api request", err)
}
