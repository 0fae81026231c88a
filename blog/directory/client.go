// Package directory resolves member ids to display names through the
// member directory API.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/testausserveri/syslog/blog/domain"
)

// lookupTimeout bounds a single lookup so a hung directory call degrades to
// the caller's fallback instead of stalling the listing.
const lookupTimeout = 5 * time.Second

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client looks up member display names.
type Client struct {
	httpClient HTTPClient
	baseURL    string
}

var _ domain.AuthorDirectory = (*Client)(nil)

// NewClient creates a directory client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type memberResponse struct {
	Name string `json:"name"`
}

// DisplayName fetches the display name for a bare member id.
func (c *Client) DisplayName(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/members/"+url.PathEscape(id), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("member API returned HTTP %d for %s", resp.StatusCode, id)
	}

	var member memberResponse
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return "", fmt.Errorf("failed to decode member response: %w", err)
	}
	if member.Name == "" {
		return "", fmt.Errorf("member %s has no display name", id)
	}

	return member.Name, nil
}
