// Package persistence reads and writes the prebuilt post index.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/testausserveri/syslog/blog/domain"
)

// SnapshotRepository serves listings from a prebuilt {posts, allCount}
// index file instead of recomputing them. The index is produced out of band
// and read once; it is treated as immutable for the process lifetime.
type SnapshotRepository struct {
	path string

	once   sync.Once
	result domain.PostsListResult
	err    error
}

// NewSnapshotRepository creates a repository backed by the index at path.
func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{path: path}
}

// List applies rng to the index's posts. A missing or corrupt index is a
// deployment defect, so the error surfaces instead of degrading.
func (r *SnapshotRepository) List(_ context.Context, rng domain.ListRange) (domain.PostsListResult, error) {
	r.once.Do(func() {
		r.result, r.err = r.load()
	})
	if r.err != nil {
		return domain.PostsListResult{}, r.err
	}

	return domain.PostsListResult{
		Posts:    rng.Slice(r.result.Posts),
		AllCount: r.result.AllCount,
	}, nil
}

func (r *SnapshotRepository) load() (domain.PostsListResult, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return domain.PostsListResult{}, fmt.Errorf("failed to read post index %s: %w", r.path, err)
	}

	var result domain.PostsListResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.PostsListResult{}, fmt.Errorf("failed to parse post index %s: %w", r.path, err)
	}
	return result, nil
}

// Write serializes result to the index path. The file goes to a temp name
// first so a reader never observes a partial index.
func (r *SnapshotRepository) Write(result domain.PostsListResult) error {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal post index: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write post index: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace post index: %w", err)
	}
	return nil
}
