// Package linkup is a stateless gateway over the Linkup web search API.
//
// One call maps a free-text query to a short plain-text digest of the
// top results, suitable for feeding straight into an agent prompt.
package linkup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anisense/anisense/pkg/httpclient"
)

// DefaultEndpoint is the Linkup search endpoint.
const DefaultEndpoint = "https://api.linkup.so/v1/search"

// Client talks to the Linkup search API.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	http       *httpclient.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithMaxResults caps how many results are included in the digest.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// withClock overrides the digest timestamp source in tests.
func withClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a search gateway. Searches are single-shot: the
// default client performs no retries and failures propagate to the caller.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultEndpoint,
		maxResults: 3,
		http: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
			httpclient.WithMaxRetries(0),
		),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query      string `json:"q"`
	Depth      string `json:"depth"`
	OutputType string `json:"outputType"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Search runs one standard-depth search and formats the top results as a
// digest: a header naming the query and the current date, then for each
// result its name, URL, and content snippet separated by blank lines.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(searchRequest{
		Query:      query,
		Depth:      "standard",
		OutputType: "searchResults",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}

	return c.formatDigest(query, parsed.Results), nil
}

func (c *Client) formatDigest(query string, results []searchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s' on %s\n\n", query, c.now().Format("2006-01-02"))
	for i, result := range results {
		if i == c.maxResults {
			break
		}
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", result.Name, result.URL, result.Content)
	}
	return b.String()
}
