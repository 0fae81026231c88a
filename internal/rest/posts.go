package rest

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/testausserveri/syslog/api"
	"github.com/testausserveri/syslog/blog/domain"
)

// PostsHandler serves the post listing and post page endpoints.
type PostsHandler struct {
	lister PostLister
	reader PostReader
}

func NewPostsHandler(lister PostLister, reader PostReader) *PostsHandler {
	return &PostsHandler{
		lister: lister,
		reader: reader,
	}
}

// List returns posts selected by the limit or start/end query parameters.
func (h *PostsHandler) List(c *gin.Context) {
	rng, err := rangeFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.lister.List(c.Request.Context(), rng)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns one post with its rendered body.
func (h *PostsHandler) Get(c *gin.Context) {
	slug := c.Param("slug")

	post, html, err := h.reader.Get(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("Failed to load post")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, api.PostPage{Post: post, HTML: html})
}

func rangeFromQuery(c *gin.Context) (domain.ListRange, error) {
	if limit, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return domain.ListRange{}, fmt.Errorf("invalid limit %q", limit)
		}
		return domain.Last(n), nil
	}

	start, hasStart := c.GetQuery("start")
	end, hasEnd := c.GetQuery("end")
	if hasStart != hasEnd {
		return domain.ListRange{}, fmt.Errorf("start and end must be given together")
	}
	if !hasStart {
		return domain.All(), nil
	}

	s, sErr := strconv.Atoi(start)
	e, eErr := strconv.Atoi(end)
	if sErr != nil || eErr != nil || s < 0 || e < s {
		return domain.ListRange{}, fmt.Errorf("invalid range [%s, %s]", start, end)
	}
	return domain.Window(s, e), nil
}
