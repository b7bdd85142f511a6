// Package times cuts day and ISO-week windows. Weeks start on Monday and
// weekday indices run 1 (Monday) .. 7 (Sunday).
package times

import (
	"time"

	"github.com/jinzhu/now"
)

func with(t time.Time) *now.Now {
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: t.Location()}
	return cfg.With(t)
}

func DayStart(t time.Time) time.Time  { return with(t).BeginningOfDay() }
func DayEnd(t time.Time) time.Time    { return with(t).EndOfDay() }
func WeekStart(t time.Time) time.Time { return with(t).BeginningOfWeek() }
func WeekEnd(t time.Time) time.Time   { return with(t).EndOfWeek() }

// WeekDay returns the 1-based Monday-first weekday index of t.
func WeekDay(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}

// WeekDayName is the English fallback name for a 1..7 index.
func WeekDayName(i int) string {
	if i < 1 || i > 7 {
		return ""
	}
	return time.Weekday(i % 7).String()
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameWeek compares ISO year and week number.
func SameWeek(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// CurrentDay is how many day slots a week view shows: the weekday of now
// while the week is running, 7 once it is over, 0 before it starts.
func CurrentDay(weekOf, now time.Time) int {
	now = now.In(weekOf.Location())
	switch {
	case now.After(WeekEnd(weekOf)):
		return 7
	case now.Before(WeekStart(weekOf)):
		return 0
	default:
		return WeekDay(now)
	}
}

// FromMillis converts a stored unix-millisecond timestamp into loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}
