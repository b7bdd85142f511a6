// Package store implements the journal ports on top of gorm.
package store

import (
	"errors"
	"fmt"

	"github.com/SimoHua/symphonyx/internal/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Models lists every table the journal reads, for AutoMigrate.
func Models() []any {
	return []any{&model.User{}, &model.Article{}, &model.Archive{}, &model.Comment{}, &model.Tag{}}
}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
