package store

import (
	"context"

	"github.com/SimoHua/symphonyx/internal/model"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, wrap("get user "+id, err)
	}
	return &u, nil
}

func (s *UserStore) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&u).Error; err != nil {
		return nil, wrap("get user by name "+name, err)
	}
	return &u, nil
}

func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrap("get users", err)
	}
	return users, nil
}

// FindExistingNames returns the subset of names that belong to a user.
func (s *UserStore) FindExistingNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var found []string
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("name IN ?", names).
		Pluck("name", &found).Error
	if err != nil {
		return nil, wrap("find user names", err)
	}
	return found, nil
}
