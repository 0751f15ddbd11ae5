package application

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// documentMarkdown turns document bodies into HTML. Raw HTML passes through
// goldmark and is left to documentPolicy to clean.
var documentMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// documentPolicy allows user-generated formatting and forces every link to
// open with rel="nofollow noopener".
var documentPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// RenderMarkdown converts a document body to sanitized HTML. An empty body
// renders as an empty string. If goldmark fails the raw body is sanitized
// instead.
func RenderMarkdown(body string) string {
	if body == "" {
		return ""
	}

	var out bytes.Buffer
	if err := documentMarkdown.Convert([]byte(body), &out); err != nil {
		return documentPolicy.Sanitize(body)
	}
	return documentPolicy.Sanitize(out.String())
}
