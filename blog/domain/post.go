package domain

import (
	"context"
	"time"
)

// DirectoryIDPrefix marks author ids that must be resolved through the
// member directory instead of being used as literal display names.
const DirectoryIDPrefix = "ts:"

// Author is a single post author. ID is either a literal display name or a
// directory reference ("ts:<id>"). Name is the resolved display name; when
// resolution fails it falls back to the raw id, so it is never empty.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Post is the normalized article entity shared by local and syndicated
// content. Slug is unique within a listing; syndicated posts use their
// external link as slug and carry it again in URL.
type Post struct {
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Excerpt      string    `json:"excerpt"`
	FeatureImage string    `json:"feature_image"`
	Datetime     time.Time `json:"datetime"`
	ReadingTime  int       `json:"readingTime"`
	Authors      []Author  `json:"authors"`
	URL          string    `json:"url,omitempty"`
}

// RawPost is a locally loaded post before author resolution. AuthorIDs holds
// the front-matter author references in document order.
type RawPost struct {
	Slug         string
	Title        string
	Category     string
	Excerpt      string
	FeatureImage string
	Datetime     time.Time
	ReadingTime  int
	AuthorIDs    []string
}

// PostsListResult pairs a page of posts with the total number of local
// documents discovered before filtering. AllCount feeds the pagination UI
// and is deliberately not len(Posts).
type PostsListResult struct {
	Posts    []Post `json:"posts"`
	AllCount int    `json:"allCount"`
}

// ContentSource loads locally authored posts.
type ContentSource interface {
	// Discover returns the parseable local posts in no particular order,
	// together with the number of post files found before filtering.
	Discover(ctx context.Context) ([]RawPost, int, error)

	// Read returns a single post and its markdown body.
	Read(slug string) (RawPost, []byte, error)
}

// AuthorDirectory resolves a bare member id (no "ts:" prefix) to a display
// name.
type AuthorDirectory interface {
	DisplayName(ctx context.Context, id string) (string, error)
}

// FeedSource fetches posts syndicated from an external feed.
type FeedSource interface {
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
}
