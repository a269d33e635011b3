package tool

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// VideoSearchOptions configure the video search tool.
type VideoSearchOptions struct {
	// BaseURL of the YouTube Data API.
	BaseURL string

	// APIKey authenticates requests to the YouTube Data API.
	APIKey string

	// HTTPClient used for requests.
	HTTPClient *http.Client

	// MaxResults caps the videos included in the result.
	MaxResults int
}

// VideoSearch finds videos via the YouTube Data API v3.
type VideoSearch struct {
	opts VideoSearchOptions
}

// NewVideoSearch creates a video search tool.
func NewVideoSearch(apiKey string, optFns ...func(o *VideoSearchOptions)) *VideoSearch {
	opts := VideoSearchOptions{
		BaseURL:    "https://www.googleapis.com/youtube/v3",
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
		MaxResults: 5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &VideoSearch{opts: opts}
}

// Name implements Tool.
func (t *VideoSearch) Name() string { return "video_search" }

// Description implements Tool.
func (t *VideoSearch) Description() string {
	return "Search for videos on a topic. Returns video titles with watch links."
}

// Invoke implements Tool.
func (t *VideoSearch) Invoke(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(t.opts.MaxResults))
	if t.opts.APIKey != "" {
		params.Set("key", t.opts.APIKey)
	}

	body, err := fetch(ctx, t.opts.HTTPClient, t.Name(), t.opts.BaseURL+"/search?"+params.Encode())
	if err != nil {
		return "", err
	}

	var lines []string
	for _, item := range gjson.GetBytes(body, "items").Array() {
		id := item.Get("id.videoId").String()
		title := item.Get("snippet.title").String()
		if id == "" || title == "" {
			continue
		}
		lines = append(lines, title+" (https://www.youtube.com/watch?v="+id+")")
	}
	if len(lines) == 0 {
		return "no results found for: " + query, nil
	}
	return strings.Join(lines, "\n"), nil
}
