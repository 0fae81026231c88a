package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testausserveri/syslog/blog/domain"
)

type fakeContent struct {
	posts    []domain.RawPost
	allCount int
	err      error
	body     []byte
}

func (f *fakeContent) Discover(ctx context.Context) ([]domain.RawPost, int, error) {
	return f.posts, f.allCount, f.err
}

func (f *fakeContent) Read(slug string) (domain.RawPost, []byte, error) {
	for _, post := range f.posts {
		if post.Slug == slug {
			return post, f.body, nil
		}
	}
	return domain.RawPost{}, nil, fmt.Errorf("no such post %s", slug)
}

type fakeDirectory struct {
	names map[string]string

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeDirectory) DisplayName(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[id]++
	f.mu.Unlock()

	name, ok := f.names[id]
	if !ok {
		return "", fmt.Errorf("member %s not found", id)
	}
	return name, nil
}

type fakeFeed struct {
	posts []domain.Post
	err   error

	mu    sync.Mutex
	calls int
}

func (f *fakeFeed) RecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.posts) {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(slug string, markdown []byte) (string, error) {
	return "<p>" + string(markdown) + "</p>", nil
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func rawPost(slug, datetime string, authorIDs ...string) domain.RawPost {
	return domain.RawPost{
		Slug:        slug,
		Title:       "Post " + slug,
		Datetime:    date(datetime),
		ReadingTime: 1,
		AuthorIDs:   authorIDs,
	}
}

func newService(content *fakeContent, dir *fakeDirectory, feed *fakeFeed) *PostService {
	return NewPostService(content, dir, feed, fakeRenderer{}, 3)
}

func TestPostService_List_SortsNewestFirst(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("oldest", "2024-01-01", "Author"),
			rawPost("newest", "2024-03-01", "Author"),
			rawPost("middle", "2024-02-01", "Author"),
		},
		allCount: 3,
	}
	service := newService(content, &fakeDirectory{}, &fakeFeed{})

	result, err := service.List(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"newest", "middle", "oldest"}
	for i, slug := range expected {
		if result.Posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, result.Posts[i].Slug, slug)
		}
	}
	if result.AllCount != 3 {
		t.Errorf("allCount = %d, want 3", result.AllCount)
	}
}

// Last(n) slices from the tail of the descending-sorted list, so it returns
// the n oldest posts. Consumers have relied on this exact slice since the
// listing API was introduced; do not "fix" it without migrating them.
func TestPostService_List_LastTakesTailOfDescendingOrder(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("march", "2024-03-01"),
			rawPost("february", "2024-02-01"),
			rawPost("january", "2024-01-01"),
		},
		allCount: 3,
	}
	service := newService(content, &fakeDirectory{}, &fakeFeed{})

	result, err := service.List(context.Background(), domain.Last(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Posts) != 2 {
		t.Fatalf("List(Last(2)) returned %d posts, want 2", len(result.Posts))
	}
	if result.Posts[0].Slug != "february" || result.Posts[1].Slug != "january" {
		t.Errorf("List(Last(2)) = [%s, %s], want [february, january]",
			result.Posts[0].Slug, result.Posts[1].Slug)
	}
}

func TestPostService_List_WindowIsInclusive(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("a", "2024-01-05"),
			rawPost("b", "2024-01-04"),
			rawPost("c", "2024-01-03"),
			rawPost("d", "2024-01-02"),
			rawPost("e", "2024-01-01"),
		},
		allCount: 5,
	}
	service := newService(content, &fakeDirectory{}, &fakeFeed{})

	result, err := service.List(context.Background(), domain.Window(1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"b", "c", "d"}
	if len(result.Posts) != len(expected) {
		t.Fatalf("List(Window(1, 3)) returned %d posts, want %d", len(result.Posts), len(expected))
	}
	for i, slug := range expected {
		if result.Posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, result.Posts[i].Slug, slug)
		}
	}
}

func TestPostService_List_StableSortKeepsDiscoveryOrderOnTies(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("first", "2024-01-01"),
			rawPost("second", "2024-01-01"),
			rawPost("third", "2024-01-01"),
		},
		allCount: 3,
	}
	service := newService(content, &fakeDirectory{}, &fakeFeed{})

	result, err := service.List(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"first", "second", "third"}
	for i, slug := range expected {
		if result.Posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, result.Posts[i].Slug, slug)
		}
	}
}

func TestPostService_List_ResolvesDirectoryAuthors(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("a", "2024-01-02", "ts:abc", "Literal Name"),
			rawPost("b", "2024-01-01", "ts:abc", "ts:missing"),
		},
		allCount: 2,
	}
	dir := &fakeDirectory{names: map[string]string{"abc": "Ruben"}}
	service := newService(content, dir, &fakeFeed{})

	result, err := service.List(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := result.Posts[0]
	if first.Authors[0].Name != "Ruben" || first.Authors[0].ID != "ts:abc" {
		t.Errorf("resolved author = %+v, want Ruben keeping the ts: id", first.Authors[0])
	}
	if first.Authors[1].Name != "Literal Name" || first.Authors[1].ID != "Literal Name" {
		t.Errorf("literal author = %+v, want the raw name passed through", first.Authors[1])
	}

	// A failed lookup falls back to the raw id; the author is never dropped.
	second := result.Posts[1]
	if len(second.Authors) != 2 {
		t.Fatalf("post b has %d authors, want 2", len(second.Authors))
	}
	if second.Authors[1].Name != "ts:missing" {
		t.Errorf("unresolved author name = %q, want the raw id", second.Authors[1].Name)
	}
	for _, post := range result.Posts {
		for _, author := range post.Authors {
			if author.Name == "" {
				t.Errorf("post %s has an author with an empty name", post.Slug)
			}
		}
	}
}

func TestPostService_List_LooksUpEachIdOnce(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("a", "2024-01-03", "ts:abc"),
			rawPost("b", "2024-01-02", "ts:abc", "ts:def"),
			rawPost("c", "2024-01-01", "ts:def", "Literal"),
		},
		allCount: 3,
	}
	dir := &fakeDirectory{names: map[string]string{"abc": "Ruben", "def": "Mikael"}}
	service := newService(content, dir, &fakeFeed{})

	if _, err := service.List(context.Background(), domain.All()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.calls["abc"] != 1 || dir.calls["def"] != 1 {
		t.Errorf("directory calls = %v, want exactly one per unique id", dir.calls)
	}
	if _, ok := dir.calls["Literal"]; ok {
		t.Error("literal author name was sent to the directory")
	}
}

func TestPostService_List_NeverTouchesTheFeed(t *testing.T) {
	feed := &fakeFeed{posts: []domain.Post{{Slug: "https://example.com/x", Datetime: date("2024-06-01")}}}
	content := &fakeContent{posts: []domain.RawPost{rawPost("a", "2024-01-01")}, allCount: 1}
	service := newService(content, &fakeDirectory{}, feed)

	result, err := service.List(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feed.calls != 0 {
		t.Errorf("feed was called %d times from List, want 0", feed.calls)
	}
	if len(result.Posts) != 1 {
		t.Errorf("List() returned %d posts, want local posts only", len(result.Posts))
	}
}

func TestPostService_ListWithSyndicated_MergesAndSorts(t *testing.T) {
	content := &fakeContent{
		posts: []domain.RawPost{
			rawPost("local-new", "2024-03-01"),
			rawPost("local-old", "2024-01-01"),
		},
		allCount: 2,
	}
	feed := &fakeFeed{posts: []domain.Post{
		{Slug: "https://testausauto.fi/x/", URL: "https://testausauto.fi/x/", Datetime: date("2024-02-01")},
	}}
	service := newService(content, &fakeDirectory{}, feed)

	result, err := service.ListWithSyndicated(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"local-new", "https://testausauto.fi/x/", "local-old"}
	if len(result.Posts) != len(expected) {
		t.Fatalf("returned %d posts, want %d", len(result.Posts), len(expected))
	}
	for i, slug := range expected {
		if result.Posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, result.Posts[i].Slug, slug)
		}
	}

	// allCount still counts local files only.
	if result.AllCount != 2 {
		t.Errorf("allCount = %d, want 2", result.AllCount)
	}
}

func TestPostService_ListWithSyndicated_FeedFailureDegradesToLocal(t *testing.T) {
	content := &fakeContent{posts: []domain.RawPost{rawPost("a", "2024-01-01")}, allCount: 1}
	feed := &fakeFeed{err: fmt.Errorf("connection refused")}
	service := newService(content, &fakeDirectory{}, feed)

	result, err := service.ListWithSyndicated(context.Background(), domain.All())
	if err != nil {
		t.Fatalf("feed failure leaked out of the aggregation: %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].Slug != "a" {
		t.Errorf("posts = %v, want the local post only", result.Posts)
	}
}

func TestPostService_List_DiscoveryFailurePropagates(t *testing.T) {
	content := &fakeContent{err: fmt.Errorf("permission denied")}
	service := newService(content, &fakeDirectory{}, &fakeFeed{})

	if _, err := service.List(context.Background(), domain.All()); err == nil {
		t.Fatal("expected an error when discovery fails")
	}
}

func TestPostService_Get(t *testing.T) {
	content := &fakeContent{
		posts:    []domain.RawPost{rawPost("hello", "2024-01-01", "ts:abc")},
		allCount: 1,
		body:     []byte("body text"),
	}
	dir := &fakeDirectory{names: map[string]string{"abc": "Ruben"}}
	service := newService(content, dir, &fakeFeed{})

	post, html, err := service.Get(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Authors[0].Name != "Ruben" {
		t.Errorf("author = %q, want resolved name", post.Authors[0].Name)
	}
	if html != "<p>body text</p>" {
		t.Errorf("html = %q, want rendered body", html)
	}

	if _, _, err := service.Get(context.Background(), "missing"); err == nil {
		t.Error("expected an error for an unknown slug")
	}
}
