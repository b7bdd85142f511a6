package service

import (
	"context"
	"time"

	"github.com/SimoHua/symphonyx/internal/model"
)

// UserDirectory resolves accounts. Lookups of unknown users return an error
// wrapping store.ErrNotFound.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindExistingNames(ctx context.Context, names []string) ([]string, error)
}

type ArticleStore interface {
	QueryByTypeAndTimeRange(ctx context.Context, typ int, start, end time.Time) ([]model.Article, error)
	Get(ctx context.Context, id string) (*model.Article, error)
	Latest(ctx context.Context, typ int) (*model.Article, error)
	LatestValid(ctx context.Context, typ int) (*model.Article, error)
	ExistsByAuthorInRange(ctx context.Context, typ int, authorID string, start, end time.Time) (bool, error)
	Page(ctx context.Context, typ, page, size int) ([]model.Article, int64, error)
}

type ArchiveStore interface {
	GetDailyArchive(ctx context.Context, t time.Time) (*model.Archive, error)
	GetWeeklyArchive(ctx context.Context, t time.Time) (*model.Archive, error)
}

type CommentStore interface {
	LatestCommenterIDs(ctx context.Context, articleID string, limit int) ([]string, error)
}

type TagStore interface {
	FindByTitles(ctx context.Context, titles []string) ([]model.Tag, error)
}

// Renderer turns markdown into sanitized HTML.
type Renderer interface {
	ToHTML(text string) (string, error)
	Clean(html string) string
}

// Labels serves localized strings.
type Labels interface {
	Get(key string) string
	WeekDayName(i int) string
}
