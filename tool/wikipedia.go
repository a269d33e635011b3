package tool

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// WikipediaOptions configure the Wikipedia lookup tool.
type WikipediaOptions struct {
	// BaseURL of the MediaWiki API endpoint.
	BaseURL string

	// HTTPClient used for requests.
	HTTPClient *http.Client

	// MaxResults caps the articles included in the result.
	MaxResults int
}

// Wikipedia looks up encyclopedic information via the MediaWiki search API.
type Wikipedia struct {
	opts WikipediaOptions
}

// NewWikipedia creates a Wikipedia lookup tool.
func NewWikipedia(optFns ...func(o *WikipediaOptions)) *Wikipedia {
	opts := WikipediaOptions{
		BaseURL:    "https://en.wikipedia.org/w/api.php",
		HTTPClient: http.DefaultClient,
		MaxResults: 3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Wikipedia{opts: opts}
}

// Name implements Tool.
func (t *Wikipedia) Name() string { return "wikipedia" }

// Description implements Tool.
func (t *Wikipedia) Description() string {
	return "Look up encyclopedic information about people, places, concepts and events on Wikipedia."
}

// Invoke implements Tool.
func (t *Wikipedia) Invoke(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")
	params.Set("srlimit", strconv.Itoa(t.opts.MaxResults))

	body, err := fetch(ctx, t.opts.HTTPClient, t.Name(), t.opts.BaseURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	var lines []string
	for _, hit := range gjson.GetBytes(body, "query.search").Array() {
		title := hit.Get("title").String()
		snippet := stripSearchMarkup(hit.Get("snippet").String())
		lines = append(lines, title+": "+snippet)
	}
	if len(lines) == 0 {
		return "no results found for: " + query, nil
	}
	return strings.Join(lines, "\n"), nil
}

// stripSearchMarkup removes the highlight spans MediaWiki embeds in snippets.
func stripSearchMarkup(s string) string {
	s = strings.ReplaceAll(s, `<span class="searchmatch">`, "")
	s = strings.ReplaceAll(s, "</span>", "")
	return s
}
