package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/testausserveri/syslog/blog/application"
	"github.com/testausserveri/syslog/blog/content"
	"github.com/testausserveri/syslog/blog/directory"
	"github.com/testausserveri/syslog/blog/persistence"
	"github.com/testausserveri/syslog/blog/syndication"
	"github.com/testausserveri/syslog/internal/middleware"
	"github.com/testausserveri/syslog/internal/rest"
	"github.com/testausserveri/syslog/shared/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	loader := content.NewLoader(cfg.PostsDir)
	renderer := content.NewRenderer(cfg.SiteURL)
	members := directory.NewClient(cfg.DirectoryURL)
	feed := syndication.NewClient(cfg.FeedURL, cfg.FeedAuthors)

	service := application.NewPostService(loader, members, feed, renderer, cfg.FeedLimit)

	var lister rest.PostLister = service
	if cfg.UseIndex {
		lister = persistence.NewSnapshotRepository(cfg.IndexPath)
	}

	feedRenderer := &application.FeedRenderer{
		SiteURL: cfg.SiteURL,
		Title:   cfg.FeedTitle,
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, rest.NewPostsHandler(lister, service), rest.NewFeedHandler(service, feedRenderer))

	log.Info().Str("addr", cfg.Addr).Bool("useIndex", cfg.UseIndex).Msg("syslog server listening")
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
