// Package content loads locally authored articles from the posts directory.
package content

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/testausserveri/syslog/blog/domain"
	"github.com/testausserveri/syslog/shared/gather"
)

const (
	postExtension   = ".mdx"
	frontMatterMark = "---"
	wordsPerMinute  = 120
)

// frontMatter is the leading YAML metadata block of a post document. Every
// field is required; a document missing any of them is excluded from
// listings.
type frontMatter struct {
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category"`
	FeatureImage string   `yaml:"feature_image"`
	Excerpt      string   `yaml:"excerpt"`
	Datetime     string   `yaml:"datetime"`
	Authors      []string `yaml:"authors"`
}

func (fm frontMatter) validate() error {
	switch {
	case fm.Title == "":
		return fmt.Errorf("front matter is missing title")
	case fm.Category == "":
		return fmt.Errorf("front matter is missing category")
	case fm.FeatureImage == "":
		return fmt.Errorf("front matter is missing feature_image")
	case fm.Excerpt == "":
		return fmt.Errorf("front matter is missing excerpt")
	case fm.Datetime == "":
		return fmt.Errorf("front matter is missing datetime")
	case len(fm.Authors) == 0:
		return fmt.Errorf("front matter has no authors")
	}
	return nil
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Loader discovers and parses post documents under a fixed directory.
type Loader struct {
	dir string
}

var _ domain.ContentSource = (*Loader)(nil)

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Discover enumerates the post files and parses them concurrently. A file
// whose metadata is missing or malformed is skipped without failing the
// listing; the returned count is the number of post files found before any
// skipping.
func (l *Loader) Discover(ctx context.Context) ([]domain.RawPost, int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read posts directory %s: %w", l.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), postExtension) {
			names = append(names, entry.Name())
		}
	}

	settled := gather.Settle(ctx, names, func(_ context.Context, name string) (domain.RawPost, error) {
		post, _, err := l.load(name)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Skipping unparseable post")
		}
		return post, err
	})

	return gather.Successes(settled), len(names), nil
}

// Read loads a single post by slug along with its markdown body.
func (l *Loader) Read(slug string) (domain.RawPost, []byte, error) {
	if strings.ContainsAny(slug, "/\\") || strings.Contains(slug, "..") {
		return domain.RawPost{}, nil, fmt.Errorf("invalid slug %q", slug)
	}
	return l.load(slug + postExtension)
}

func (l *Loader) load(name string) (domain.RawPost, []byte, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return domain.RawPost{}, nil, err
	}

	block, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return domain.RawPost{}, nil, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return domain.RawPost{}, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if err := fm.validate(); err != nil {
		return domain.RawPost{}, nil, err
	}

	datetime, err := parseDatetime(fm.Datetime)
	if err != nil {
		return domain.RawPost{}, nil, err
	}

	post := domain.RawPost{
		Slug:         strings.TrimSuffix(name, postExtension),
		Title:        fm.Title,
		Category:     fm.Category,
		FeatureImage: fm.FeatureImage,
		Excerpt:      fm.Excerpt,
		Datetime:     datetime,
		ReadingTime:  readingTime(body),
		AuthorIDs:    fm.Authors,
	}
	return post, []byte(body), nil
}

// splitFrontMatter separates the leading "---" delimited metadata block from
// the document body. Documents without the block are rejected.
func splitFrontMatter(raw string) (block, body string, err error) {
	if !strings.HasPrefix(raw, frontMatterMark) {
		return "", "", fmt.Errorf("document has no front matter block")
	}

	rest := raw[len(frontMatterMark):]
	idx := strings.Index(rest, frontMatterMark)
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated front matter block")
	}

	return rest[:idx], rest[idx+len(frontMatterMark):], nil
}

func parseDatetime(value string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}

// readingTime estimates minutes needed to read the body at 120 words per
// minute. Never below one minute, even for a stub article.
func readingTime(body string) int {
	minutes := int(math.Ceil(float64(len(strings.Fields(body))) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
