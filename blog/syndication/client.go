// Package syndication pulls recent posts from the partner blog's RSS feed
// and normalizes them into the shared post schema.
package syndication

import (
	"context"
	"fmt"
	"html"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/testausserveri/syslog/blog/domain"
)

const wordsPerMinute = 120

var (
	paragraphPattern = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
)

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

// Client fetches the external feed. authorIDs maps the feed's author
// display names to member directory ids; names absent from the map keep an
// empty id and render with the raw name.
type Client struct {
	httpClient HTTPClient
	feedURL    string
	authorIDs  map[string]string
	parser     *gofeed.Parser
}

var _ domain.FeedSource = (*Client)(nil)

// NewClient creates a feed client for feedURL.
func NewClient(feedURL string, authorIDs map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		feedURL:    feedURL,
		authorIDs:  authorIDs,
		parser:     gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecentPosts fetches the feed and returns its first limit items in feed
// order. The feed publishes newest first.
func (c *Client) RecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, c.normalize(item))
	}
	return posts, nil
}

func (c *Client) normalize(item *gofeed.Item) domain.Post {
	var category string
	if len(item.Categories) > 0 {
		category = item.Categories[0]
	}

	var creator string
	if item.Author != nil {
		creator = item.Author.Name
	}

	var datetime time.Time
	if item.PublishedParsed != nil {
		datetime = *item.PublishedParsed
	}

	return domain.Post{
		Slug:         item.Link,
		Title:        item.Title,
		Category:     category,
		Excerpt:      firstSentence(item.Description),
		FeatureImage: mediaURL(item),
		Datetime:     datetime,
		ReadingTime:  readingTime(item.Content),
		Authors: []domain.Author{{
			ID:   c.authorIDs[creator],
			Name: creator,
		}},
		URL: item.Link,
	}
}

// firstSentence reduces an HTML snippet to its first plain-text sentence,
// including the terminating period. A snippet without a period gets one
// appended so excerpts always read as a sentence.
func firstSentence(snippet string) string {
	text := html.UnescapeString(tagPattern.ReplaceAllString(snippet, ""))
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if idx := strings.Index(text, "."); idx >= 0 {
		return text[:idx+1]
	}
	return text + "."
}

// readingTime estimates minutes from the paragraph text of the item's full
// content at 120 words per minute.
func readingTime(content string) int {
	var words int
	for _, match := range paragraphPattern.FindAllStringSubmatch(content, -1) {
		words += len(strings.Fields(tagPattern.ReplaceAllString(match[1], "")))
	}

	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// mediaURL extracts the media:content url attribute, the feed's feature
// image.
func mediaURL(item *gofeed.Item) string {
	for _, ext := range item.Extensions["media"]["content"] {
		if url := ext.Attrs["url"]; url != "" {
			return url
		}
	}
	return ""
}
