// Command syslog-index builds the prebuilt post index the server can serve
// listings from without touching the posts directory or the member API at
// request time. Run it whenever the posts directory changes.
package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/testausserveri/syslog/blog/application"
	"github.com/testausserveri/syslog/blog/content"
	"github.com/testausserveri/syslog/blog/directory"
	"github.com/testausserveri/syslog/blog/domain"
	"github.com/testausserveri/syslog/blog/persistence"
	"github.com/testausserveri/syslog/shared/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	loader := content.NewLoader(cfg.PostsDir)
	members := directory.NewClient(cfg.DirectoryURL)
	service := application.NewPostService(loader, members, nil, nil, 0)

	result, err := service.List(context.Background(), domain.All())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to aggregate posts")
	}

	snapshot := persistence.NewSnapshotRepository(cfg.IndexPath)
	if err := snapshot.Write(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write post index")
	}

	log.Info().
		Int("posts", len(result.Posts)).
		Int("allCount", result.AllCount).
		Str("path", cfg.IndexPath).
		Msg("Post index written")
}
