package store

import (
	"context"
	"time"

	"github.com/SimoHua/symphonyx/internal/model"

	"gorm.io/gorm"
)

type ArticleStore struct{ db *gorm.DB }

func NewArticleStore(db *gorm.DB) *ArticleStore { return &ArticleStore{db: db} }

// QueryByTypeAndTimeRange returns articles of typ created in [start, end],
// oldest first.
func (s *ArticleStore) QueryByTypeAndTimeRange(ctx context.Context, typ int, start, end time.Time) ([]model.Article, error) {
	var articles []model.Article
	err := s.db.WithContext(ctx).
		Where("type = ? AND create_time >= ? AND create_time <= ?", typ, start.UnixMilli(), end.UnixMilli()).
		Order("create_time ASC, id ASC").
		Find(&articles).Error
	if err != nil {
		return nil, wrap("query articles by time range", err)
	}
	return articles, nil
}

func (s *ArticleStore) Get(ctx context.Context, id string) (*model.Article, error) {
	var a model.Article
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, wrap("get article "+id, err)
	}
	return &a, nil
}

// Latest returns the newest article of typ regardless of status.
func (s *ArticleStore) Latest(ctx context.Context, typ int) (*model.Article, error) {
	var a model.Article
	err := s.db.WithContext(ctx).
		Where("type = ?", typ).
		Order("id DESC").
		Limit(1).
		Take(&a).Error
	if err != nil {
		return nil, wrap("latest article", err)
	}
	return &a, nil
}

// LatestValid returns the newest valid article of typ.
func (s *ArticleStore) LatestValid(ctx context.Context, typ int) (*model.Article, error) {
	var a model.Article
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ?", typ, model.StatusValid).
		Order("id DESC").
		Limit(1).
		Take(&a).Error
	if err != nil {
		return nil, wrap("latest valid article", err)
	}
	return &a, nil
}

func (s *ArticleStore) ExistsByAuthorInRange(ctx context.Context, typ int, authorID string, start, end time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Article{}).
		Where("type = ? AND author_id = ? AND create_time >= ? AND create_time <= ?",
			typ, authorID, start.UnixMilli(), end.UnixMilli()).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, wrap("exists articles", err)
	}
	return n > 0, nil
}

// Page returns valid articles of typ, newest first, and the total count.
func (s *ArticleStore) Page(ctx context.Context, typ, page, size int) ([]model.Article, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Article{}).
		Where("type = ? AND status = ?", typ, model.StatusValid).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap("count articles", err)
	}

	var articles []model.Article
	err := q.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&articles).Error
	if err != nil {
		return nil, 0, wrap("page articles", err)
	}
	return articles, total, nil
}
