package store

import (
	"context"
	"time"

	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/times"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchiveStore keys archives by kind and period start. Period boundaries are
// cut in the location of the time passed in.
type ArchiveStore struct{ db *gorm.DB }

func NewArchiveStore(db *gorm.DB) *ArchiveStore { return &ArchiveStore{db: db} }

func (s *ArchiveStore) GetDailyArchive(ctx context.Context, t time.Time) (*model.Archive, error) {
	return s.get(ctx, model.ArchiveKindDay, times.DayStart(t))
}

func (s *ArchiveStore) GetWeeklyArchive(ctx context.Context, t time.Time) (*model.Archive, error) {
	return s.get(ctx, model.ArchiveKindWeek, times.WeekStart(t))
}

func (s *ArchiveStore) get(ctx context.Context, kind string, start time.Time) (*model.Archive, error) {
	var a model.Archive
	err := s.db.WithContext(ctx).
		Where("kind = ? AND start_time = ?", kind, start.UnixMilli()).
		First(&a).Error
	if err != nil {
		return nil, wrap("get "+kind+" archive", err)
	}
	return &a, nil
}

// Save upserts the archive of a period, replacing its frozen teams.
func (s *ArchiveStore) Save(ctx context.Context, a *model.Archive) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "start_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"teams"}),
	}).Create(a).Error
	if err != nil {
		return wrap("save archive", err)
	}
	return nil
}
