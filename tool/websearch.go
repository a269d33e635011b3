package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// WebSearchOptions configure the web search tool.
type WebSearchOptions struct {
	// BaseURL of the DuckDuckGo Instant Answer API.
	BaseURL string

	// HTTPClient used for requests.
	HTTPClient *http.Client

	// MaxResults caps the related topics included in the result.
	MaxResults int
}

// WebSearch answers general queries via the DuckDuckGo Instant Answer API.
type WebSearch struct {
	opts WebSearchOptions
}

// NewWebSearch creates a web search tool.
func NewWebSearch(optFns ...func(o *WebSearchOptions)) *WebSearch {
	opts := WebSearchOptions{
		BaseURL:    "https://api.duckduckgo.com",
		HTTPClient: http.DefaultClient,
		MaxResults: 5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &WebSearch{opts: opts}
}

// Name implements Tool.
func (t *WebSearch) Name() string { return "web_search" }

// Description implements Tool.
func (t *WebSearch) Description() string {
	return "Search the web for current information on any topic. Input is a search query."
}

// Invoke implements Tool. It prefers the abstract text of the instant answer
// and falls back to related topic snippets.
func (t *WebSearch) Invoke(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	body, err := fetch(ctx, t.opts.HTTPClient, t.Name(), t.opts.BaseURL+"/?"+params.Encode())
	if err != nil {
		return "", err
	}

	if abstract := gjson.GetBytes(body, "AbstractText").String(); abstract != "" {
		return abstract, nil
	}

	var lines []string
	for _, topic := range gjson.GetBytes(body, "RelatedTopics").Array() {
		if text := topic.Get("Text").String(); text != "" {
			lines = append(lines, text)
		}
		if len(lines) >= t.opts.MaxResults {
			break
		}
	}
	if len(lines) == 0 {
		return "no results found for: " + query, nil
	}
	return strings.Join(lines, "\n"), nil
}

// fetch issues a GET and returns the body, mapping transport and status
// failures to *ToolError.
func fetch(ctx context.Context, client *http.Client, tool, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewToolError(tool, err.Error(), CodeExecution)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewToolError(tool, "request timed out", CodeTimeout)
		}
		return nil, NewToolError(tool, err.Error(), CodeUpstreamError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewToolError(tool, fmt.Sprintf("unexpected status %d", resp.StatusCode), CodeUpstreamError)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewToolError(tool, err.Error(), CodeUpstreamError)
	}
	if !gjson.ValidBytes(body) {
		return nil, NewToolError(tool, "invalid JSON response", CodeBadResponse)
	}
	return body, nil
}
