package store

import (
	"context"

	"github.com/SimoHua/symphonyx/internal/model"

	"gorm.io/gorm"
)

type CommentStore struct{ db *gorm.DB }

func NewCommentStore(db *gorm.DB) *CommentStore { return &CommentStore{db: db} }

// LatestCommenterIDs returns distinct authors of valid comments on an
// article, most recent commenter first.
func (s *CommentStore) LatestCommenterIDs(ctx context.Context, articleID string, limit int) ([]string, error) {
	var rows []struct {
		AuthorID string
		Latest   int64
	}
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Select("author_id, MAX(create_time) AS latest").
		Where("article_id = ? AND status = ?", articleID, model.StatusValid).
		Group("author_id").
		Order("latest DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("latest commenters of "+articleID, err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AuthorID)
	}
	return ids, nil
}
