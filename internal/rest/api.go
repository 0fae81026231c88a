package rest

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/testausserveri/syslog/blog/domain"
)

// PostLister serves paginated listings. Both the aggregating service and
// the snapshot repository implement it.
type PostLister interface {
	List(ctx context.Context, rng domain.ListRange) (domain.PostsListResult, error)
}

// PostReader serves a single rendered post.
type PostReader interface {
	Get(ctx context.Context, slug string) (domain.Post, string, error)
}

// FeedLister serves the listing with syndicated posts merged in.
type FeedLister interface {
	ListWithSyndicated(ctx context.Context, rng domain.ListRange) (domain.PostsListResult, error)
}

func NewApi(router *gin.Engine, posts *PostsHandler, feed *FeedHandler) {
	postsV1 := router.Group("api/v1/posts")
	{
		postsV1.GET("/", posts.List)
		postsV1.GET("/:slug", posts.Get)
	}

	router.GET("/syslog/rss.xml", feed.RSS)
}
