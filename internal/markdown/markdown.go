// Package markdown renders user markdown to HTML and sanitizes the result.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// mention, link and emoji stages emit inline HTML before rendering
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, policy: Policy()}
}

// Policy is the allow-most sanitizer: user generated content plus class
// attributes on emoji images and code blocks. Scripts, styles and event
// handler attributes never pass.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("img", "code", "pre", "span")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return p
}

func (r *Renderer) ToHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) Clean(h string) string {
	return r.policy.Sanitize(h)
}

// Render is ToHTML followed by Clean.
func (r *Renderer) Render(text string) (string, error) {
	h, err := r.ToHTML(text)
	if err != nil {
		return "", err
	}
	return r.Clean(h), nil
}
