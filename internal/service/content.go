package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SimoHua/symphonyx/internal/i18n"
	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"
)

var ErrUnknownAuthor = errors.New("unknown author")

// ModerationContext is what the content gates look at besides the text.
// Parent is the thread the paragraph replies to, Viewer the signed-in user;
// both may be nil.
type ModerationContext struct {
	Author *model.User
	Parent *model.Article
	Viewer *model.User
}

// ContentService turns raw paragraph markdown into safe HTML. Stages run in
// a fixed order: moderation, discussion visibility, mentions, article and
// tag links, emoji, then markdown rendering and sanitizing.
type ContentService struct {
	users     UserDirectory
	articles  ArticleStore
	tags      TagStore
	renderer  Renderer
	labels    Labels
	servePath string
	static    string
	log       *slog.Logger
}

func NewContentService(users UserDirectory, articles ArticleStore, tags TagStore,
	renderer Renderer, labels Labels, servePath, staticServePath string) *ContentService {
	return &ContentService{
		users:     users,
		articles:  articles,
		tags:      tags,
		renderer:  renderer,
		labels:    labels,
		servePath: strings.TrimSuffix(servePath, "/"),
		static:    strings.TrimSuffix(staticServePath, "/"),
		log:       logger.With("component", "content"),
	}
}

// Transform renders a.Content. It always works on the stored source text,
// never on earlier output. A panic inside a stage is returned as an error.
func (s *ContentService) Transform(ctx context.Context, a *model.Article, mc ModerationContext) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform article %s: panic: %v", a.ID, r)
		}
	}()

	if a.Status == model.StatusInvalid {
		return s.labels.Get(i18n.ContentBlockLabel), nil
	}
	if mc.Author == nil {
		return "", fmt.Errorf("transform article %s: %w", a.ID, ErrUnknownAuthor)
	}
	if mc.Author.Invalid() {
		return s.labels.Get(i18n.ContentBlockLabel), nil
	}
	if s.hiddenDiscussion(mc) {
		return s.labels.Get(i18n.DiscussionContentLabel), nil
	}

	text := s.ResolveMentions(ctx, a.Content)
	text = s.RewriteArticleLinks(ctx, text)
	text = s.RewriteTagLinks(ctx, text)
	text = s.Emojify(text)

	h, err := s.renderer.ToHTML(text)
	if err != nil {
		return "", fmt.Errorf("transform article %s: %w", a.ID, err)
	}
	return s.renderer.Clean(h), nil
}

// TransformOrPlaceholder never fails: errors are logged and the render
// failure label is returned instead.
func (s *ContentService) TransformOrPlaceholder(ctx context.Context, a *model.Article, mc ModerationContext) string {
	out, err := s.Transform(ctx, a, mc)
	if err != nil {
		s.log.Error("transform paragraph", "id", a.ID, "author_id", a.AuthorID, "err", err)
		return s.labels.Get(i18n.ContentRenderFailedLabel)
	}
	return out
}

// hiddenDiscussion reports whether a paragraph replying to a discussion must
// be masked for the viewer: only the author, admins and users mentioned in
// the discussion may read it.
func (s *ContentService) hiddenDiscussion(mc ModerationContext) bool {
	if mc.Parent == nil || mc.Parent.Type != model.ArticleTypeDiscussion {
		return false
	}
	v := mc.Viewer
	if v == nil {
		return true
	}
	if v.ID == mc.Parent.AuthorID || v.ID == mc.Author.ID || v.Role == model.RoleAdmin {
		return false
	}
	return !mentions(mc.Parent.Content, v.Name)
}
