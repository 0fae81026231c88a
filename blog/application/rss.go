package application

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/testausserveri/syslog/blog/domain"
)

const mediaNamespace = "http://search.yahoo.com/mrss/"

// FeedRenderer serializes posts as an RSS 2.0 document.
type FeedRenderer struct {
	SiteURL string
	Title   string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	MediaNS string     `xml:"xmlns:media,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author"`
	Category    string   `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Media       rssMedia `xml:"media:content"`
}

type rssMedia struct {
	URL string `xml:"url,attr"`
}

// Render produces the feed document. Marshalling escapes every text field,
// so post content cannot inject markup into the feed.
func (r *FeedRenderer) Render(posts []domain.Post) ([]byte, error) {
	site := strings.TrimRight(r.SiteURL, "/")

	items := make([]rssItem, 0, len(posts))
	for _, post := range posts {
		names := make([]string, 0, len(post.Authors))
		for _, author := range post.Authors {
			names = append(names, author.Name)
		}

		// Syndicated posts link back to their origin.
		link := post.URL
		if link == "" {
			link = site + "/syslog/" + post.Slug
		}

		items = append(items, rssItem{
			Title:       post.Title,
			Link:        link,
			Description: post.Excerpt,
			Author:      strings.Join(names, "; "),
			Category:    post.Category,
			PubDate:     post.Datetime.Format(time.RFC1123Z),
			GUID:        post.Slug,
			Media:       rssMedia{URL: post.FeatureImage},
		})
	}

	doc := rssDoc{
		Version: "2.0",
		MediaNS: mediaNamespace,
		Channel: rssChannel{
			Title: r.Title,
			Link:  site + "/syslog",
			Items: items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}
