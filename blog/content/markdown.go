package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var slugContextKey = parser.NewContextKey()

// relativeLinkTransformer rewrites relative links and images to absolute
// site URLs. Images resolve under the post's own path, links under the blog
// root.
type relativeLinkTransformer struct {
	site string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	slug, _ := pc.Get(slugContextKey).(string)

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		link, linkOk := n.(*ast.Link)
		img, imgOk := n.(*ast.Image)
		if !linkOk && !imgOk {
			return ast.WalkContinue, nil
		}

		dest := ""
		if linkOk {
			dest = string(link.Destination)
		} else if imgOk {
			dest = string(img.Destination)
		}

		if isRelativeLink(dest) {
			destFile := path.Base(dest)
			if imgOk {
				img.Destination = []byte(t.site + "/syslog/" + slug + "/" + destFile)
			} else if linkOk {
				destFile = strings.TrimSuffix(destFile, ".mdx")
				destFile = strings.TrimSuffix(destFile, ".md")
				link.Destination = []byte(t.site + "/syslog/" + destFile)
			}
		}

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	// Protocol-relative URLs are absolute
	if strings.HasPrefix(dest, "/") {
		if strings.HasPrefix(dest, "//") {
			return false
		}
		return true
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.Contains(dest, ":") {
		return false
	}

	return true
}

// Renderer converts post bodies to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer that rewrites relative links against
// siteURL.
func NewRenderer(siteURL string) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{site: strings.TrimRight(siteURL, "/")}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &Renderer{md: md}
}

// Render converts a post body to HTML. The slug anchors relative image
// references.
func (r *Renderer) Render(slug string, markdown []byte) (string, error) {
	pc := parser.NewContext()
	pc.Set(slugContextKey, slug)

	var buf bytes.Buffer
	if err := r.md.Convert(markdown, &buf, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return buf.String(), nil
}
