// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the syslog service.
type Config struct {
	Addr      string `env:"SYSLOG_ADDR" envDefault:":8080"`
	PostsDir  string `env:"SYSLOG_POSTS_DIR" envDefault:"./posts"`
	IndexPath string `env:"SYSLOG_INDEX_PATH" envDefault:"./posts.json"`

	// UseIndex serves listings from the prebuilt index instead of
	// aggregating on every request. The RSS feed always aggregates.
	UseIndex bool `env:"SYSLOG_USE_INDEX" envDefault:"false"`

	SiteURL   string `env:"SYSLOG_SITE_URL" envDefault:"https://testausserveri.fi"`
	FeedTitle string `env:"SYSLOG_FEED_TITLE" envDefault:"Testausserveri Syslog"`

	DirectoryURL string `env:"SYSLOG_DIRECTORY_URL" envDefault:"https://api.testausserveri.fi/v1"`

	FeedURL   string `env:"SYSLOG_FEED_URL" envDefault:"https://testausauto.fi/feed/"`
	FeedLimit int    `env:"SYSLOG_FEED_LIMIT" envDefault:"3"`

	// FeedAuthors maps the partner feed's author display names to member
	// directory ids, as name=id pairs. Names missing here still render
	// with their raw name. Pairs use "=" because the ids contain ":".
	FeedAuthors map[string]string `env:"SYSLOG_FEED_AUTHORS" envKeyValSeparator:"=" envDefault:"Ruben=ts:61d8a2b6955c44fe1def464c,Mikael=ts:61d8b737a16588f423624ed5"`
}

// Load reads .env when present and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
