package clock

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// WeekStart returns the Monday 00:00 UTC on or before t. All trend series
// are keyed by this boundary.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// Elapsed returns the active training time of a workout: wall time from
// start to completion (or now, if still running) minus all pause time,
// including an ongoing pause that hasn't been folded into TotalPausedMs yet.
func Elapsed(w *models.Workout, now time.Time) time.Duration {
	end := now
	if w.CompletedAt != nil {
		end = *w.CompletedAt
	}
	elapsed := end.Sub(w.StartedAt) - time.Duration(w.TotalPausedMs)*time.Millisecond
	if w.Status == models.StatusPaused && w.PausedAt != nil {
		elapsed -= now.Sub(*w.PausedAt)
	}
	return elapsed
}
