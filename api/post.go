package api

import "github.com/testausserveri/syslog/blog/domain"

// PostPage is the single-post endpoint payload: the post metadata plus its
// body rendered to HTML.
type PostPage struct {
	Post domain.Post `json:"post"`
	HTML string      `json:"html"`
}
