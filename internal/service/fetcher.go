package service

import (
	"context"
	"errors"
	"time"

	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"
	"github.com/SimoHua/symphonyx/internal/times"
)

// ParagraphFetcher reads journal paragraphs by day or ISO week. Windows are
// cut in loc.
type ParagraphFetcher struct {
	articles ArticleStore
	loc      *time.Location
}

func NewParagraphFetcher(articles ArticleStore, loc *time.Location) *ParagraphFetcher {
	if loc == nil {
		loc = time.Local
	}
	return &ParagraphFetcher{articles: articles, loc: loc}
}

// Day returns the paragraphs created on t's calendar day, oldest first.
func (f *ParagraphFetcher) Day(ctx context.Context, t time.Time) ([]model.Article, error) {
	t = t.In(f.loc)
	return f.articles.QueryByTypeAndTimeRange(ctx, model.ArticleTypeJournalParagraph, times.DayStart(t), times.DayEnd(t))
}

// Week returns the paragraphs created in t's Monday-to-Sunday week, oldest first.
func (f *ParagraphFetcher) Week(ctx context.Context, t time.Time) ([]model.Article, error) {
	t = t.In(f.loc)
	return f.articles.QueryByTypeAndTimeRange(ctx, model.ArticleTypeJournalParagraph, times.WeekStart(t), times.WeekEnd(t))
}

func (f *ParagraphFetcher) PostedToday(ctx context.Context, authorID string, now time.Time) (bool, error) {
	now = now.In(f.loc)
	return f.articles.ExistsByAuthorInRange(ctx, model.ArticleTypeJournalParagraph, authorID,
		times.DayStart(now), times.DayEnd(now))
}

// LatestOfType returns the newest article of typ, or nil when there is none.
func (f *ParagraphFetcher) LatestOfType(ctx context.Context, typ int) (*model.Article, error) {
	a, err := f.articles.Latest(ctx, typ)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// LatestValidOfType returns the newest valid article of typ, or nil when
// there is none.
func (f *ParagraphFetcher) LatestValidOfType(ctx context.Context, typ int) (*model.Article, error) {
	a, err := f.articles.LatestValid(ctx, typ)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (f *ParagraphFetcher) Location() *time.Location { return f.loc }
