package store

import (
	"context"

	"github.com/SimoHua/symphonyx/internal/model"

	"gorm.io/gorm"
)

type TagStore struct{ db *gorm.DB }

func NewTagStore(db *gorm.DB) *TagStore { return &TagStore{db: db} }

func (s *TagStore) FindByTitles(ctx context.Context, titles []string) ([]model.Tag, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	if err := s.db.WithContext(ctx).Where("title IN ?", titles).Find(&tags).Error; err != nil {
		return nil, wrap("find tags", err)
	}
	return tags, nil
}
