package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/testausserveri/syslog/blog/application"
	"github.com/testausserveri/syslog/blog/domain"
)

// FeedHandler serves the RSS document.
type FeedHandler struct {
	lister   FeedLister
	renderer *application.FeedRenderer
}

func NewFeedHandler(lister FeedLister, renderer *application.FeedRenderer) *FeedHandler {
	return &FeedHandler{
		lister:   lister,
		renderer: renderer,
	}
}

// RSS serves the syndication feed for the whole blog, syndicated posts
// included.
func (h *FeedHandler) RSS(c *gin.Context) {
	result, err := h.lister.ListWithSyndicated(c.Request.Context(), domain.All())
	if err != nil {
		log.Error().Err(err).Msg("Failed to aggregate posts for the feed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	doc, err := h.renderer.Render(result.Posts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render the feed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/xml", doc)
}
