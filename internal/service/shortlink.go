package service

import (
	"context"
	"errors"
	"html"
	"regexp"
	"strings"

	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"
)

var articleIDPattern = regexp.MustCompile(`^\d{13,15}$`)

// bracketEscaper keeps link text emitted here out of later "[...]" rewrites.
var bracketEscaper = strings.NewReplacer("[", "&#91;", "]", "&#93;")

// bracketSpans finds "[inner]" references. Markdown constructs are skipped:
// images "![", links "[x](", references "[x][y]" and definitions "[x]:".
func bracketSpans(text string) []span {
	var spans []span
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] != ']' && text[j] != '[' && text[j] != '\n' {
			j++
		}
		if j >= len(text) || text[j] != ']' || j == i+1 {
			continue
		}
		if i > 0 && (text[i-1] == '!' || text[i-1] == ']') {
			i = j
			continue
		}
		if j+1 < len(text) && strings.IndexByte("([:", text[j+1]) >= 0 {
			i = j
			continue
		}
		spans = append(spans, span{start: i, end: j + 1, name: text[i+1 : j]})
		i = j
	}
	return spans
}

func replaceSpans(text string, spans []span, repl func(span) (string, bool)) string {
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		r, ok := repl(sp)
		if !ok {
			continue
		}
		b.WriteString(text[last:sp.start])
		b.WriteString(r)
		last = sp.end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// RewriteArticleLinks turns "[1353745196354]" into a link to that article
// when it exists, is valid and is not a discussion.
func (s *ContentService) RewriteArticleLinks(ctx context.Context, text string) string {
	resolved := make(map[string]*model.Article)
	return replaceSpans(text, bracketSpans(text), func(sp span) (string, bool) {
		if !articleIDPattern.MatchString(sp.name) {
			return "", false
		}
		a, seen := resolved[sp.name]
		if !seen {
			var err error
			a, err = s.articles.Get(ctx, sp.name)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				s.log.Warn("resolve article link", "id", sp.name, "err", err)
			}
			resolved[sp.name] = a
		}
		if a == nil || a.Status != model.StatusValid || a.Type == model.ArticleTypeDiscussion {
			return "", false
		}
		title := a.Title
		if title == "" {
			title = a.ID
		}
		return "<a href='" + s.permalink(a) + "'>" + bracketEscaper.Replace(html.EscapeString(title)) + "</a>", true
	})
}

// RewriteTagLinks turns "[title]" into a link to the tag page for existing
// tags. Titles are looked up in one query.
func (s *ContentService) RewriteTagLinks(ctx context.Context, text string) string {
	spans := bracketSpans(text)
	var titles []string
	for _, sp := range spans {
		if !articleIDPattern.MatchString(sp.name) {
			titles = append(titles, sp.name)
		}
	}
	if len(titles) == 0 {
		return text
	}

	tags, err := s.tags.FindByTitles(ctx, titles)
	if err != nil {
		s.log.Warn("resolve tag links", "err", err)
		return text
	}
	uris := make(map[string]string, len(tags))
	for _, t := range tags {
		uris[t.Title] = t.URI
	}

	return replaceSpans(text, spans, func(sp span) (string, bool) {
		uri, ok := uris[sp.name]
		if !ok {
			return "", false
		}
		return "<a href='" + s.servePath + "/tag/" + uri + "'>" + html.EscapeString(sp.name) + "</a>", true
	})
}

func (s *ContentService) permalink(a *model.Article) string {
	switch {
	case a.Permalink == "":
		return s.servePath + "/article/" + a.ID
	case strings.HasPrefix(a.Permalink, "/"):
		return s.servePath + a.Permalink
	default:
		return a.Permalink
	}
}
