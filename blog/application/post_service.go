// Package application orchestrates post aggregation: local content,
// syndicated posts and author resolution come together here.
package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/testausserveri/syslog/blog/domain"
	"github.com/testausserveri/syslog/shared/gather"
)

// BodyRenderer converts a post's markdown body to HTML.
type BodyRenderer interface {
	Render(slug string, markdown []byte) (string, error)
}

// PostService aggregates local and syndicated posts into ordered listings.
// Listings are recomputed on every call; nothing is cached between requests.
type PostService struct {
	content   domain.ContentSource
	directory domain.AuthorDirectory
	feed      domain.FeedSource
	renderer  BodyRenderer
	feedLimit int
}

// NewPostService wires the aggregation pipeline together.
func NewPostService(content domain.ContentSource, directory domain.AuthorDirectory, feed domain.FeedSource, renderer BodyRenderer, feedLimit int) *PostService {
	return &PostService{
		content:   content,
		directory: directory,
		feed:      feed,
		renderer:  renderer,
		feedLimit: feedLimit,
	}
}

// List returns local posts with resolved authors, newest first, reduced to
// rng. AllCount is the number of post files discovered, not len(Posts).
// Syndicated posts never appear here.
func (s *PostService) List(ctx context.Context, rng domain.ListRange) (domain.PostsListResult, error) {
	posts, allCount, err := s.localPosts(ctx)
	if err != nil {
		return domain.PostsListResult{}, err
	}

	sortByDatetime(posts)

	return domain.PostsListResult{Posts: rng.Slice(posts), AllCount: allCount}, nil
}

// ListWithSyndicated returns the same listing as List with the most recent
// syndicated posts merged in. A syndication failure reduces to an empty
// contribution; it never fails the listing.
func (s *PostService) ListWithSyndicated(ctx context.Context, rng domain.ListRange) (domain.PostsListResult, error) {
	externalCh := make(chan []domain.Post, 1)
	go func() {
		external, err := s.feed.RecentPosts(ctx, s.feedLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Syndicated feed unavailable")
			external = nil
		}
		externalCh <- external
	}()

	posts, allCount, err := s.localPosts(ctx)
	if err != nil {
		return domain.PostsListResult{}, err
	}

	posts = append(posts, <-externalCh...)
	sortByDatetime(posts)

	return domain.PostsListResult{Posts: rng.Slice(posts), AllCount: allCount}, nil
}

// Get returns a single local post with resolved authors and its body
// rendered to HTML.
func (s *PostService) Get(ctx context.Context, slug string) (domain.Post, string, error) {
	raw, body, err := s.content.Read(slug)
	if err != nil {
		return domain.Post{}, "", fmt.Errorf("failed to read post %s: %w", slug, err)
	}

	names := s.resolveAuthors(ctx, []domain.RawPost{raw})
	post := materialize(raw, names)

	html, err := s.renderer.Render(slug, body)
	if err != nil {
		return domain.Post{}, "", fmt.Errorf("failed to render post %s: %w", slug, err)
	}

	return post, html, nil
}

func (s *PostService) localPosts(ctx context.Context) ([]domain.Post, int, error) {
	raw, allCount, err := s.content.Discover(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to discover posts: %w", err)
	}

	names := s.resolveAuthors(ctx, raw)

	posts := make([]domain.Post, 0, len(raw))
	for _, rp := range raw {
		posts = append(posts, materialize(rp, names))
	}
	return posts, allCount, nil
}

// resolveAuthors looks up every distinct directory-referenced author id
// exactly once, concurrently. A failed lookup is logged and left out of the
// returned map; literal ids are never sent to the directory.
func (s *PostService) resolveAuthors(ctx context.Context, raw []domain.RawPost) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, post := range raw {
		for _, id := range post.AuthorIDs {
			if !strings.HasPrefix(id, domain.DirectoryIDPrefix) {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	settled := gather.Settle(ctx, ids, func(ctx context.Context, id string) (string, error) {
		return s.directory.DisplayName(ctx, strings.TrimPrefix(id, domain.DirectoryIDPrefix))
	})

	names := make(map[string]string, len(ids))
	for _, result := range settled {
		if result.Err != nil {
			log.Warn().Err(result.Err).Str("author", result.Input).Msg("Author lookup failed")
			continue
		}
		names[result.Input] = result.Value
	}
	return names
}

// materialize turns raw author ids into Author entries. Unresolved
// directory ids and literal ids keep the raw id as the display name.
func materialize(rp domain.RawPost, names map[string]string) domain.Post {
	authors := make([]domain.Author, 0, len(rp.AuthorIDs))
	for _, id := range rp.AuthorIDs {
		name, ok := names[id]
		if !ok {
			name = id
		}
		authors = append(authors, domain.Author{ID: id, Name: name})
	}

	return domain.Post{
		Slug:         rp.Slug,
		Title:        rp.Title,
		Category:     rp.Category,
		Excerpt:      rp.Excerpt,
		FeatureImage: rp.FeatureImage,
		Datetime:     rp.Datetime,
		ReadingTime:  rp.ReadingTime,
		Authors:      authors,
	}
}

// sortByDatetime orders posts newest first, keeping discovery order for
// equal timestamps.
func sortByDatetime(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Datetime.After(posts[j].Datetime)
	})
}
