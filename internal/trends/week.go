package trends

import (
	"time"

	"github.com/claude/liftlog/internal/clock"
)

// DefaultRangeWeeks applies when the caller passes no or an unknown range.
const DefaultRangeWeeks = 12

// ParseRange maps the supported range selectors to week counts.
func ParseRange(s string) int {
	switch s {
	case "8w":
		return 8
	case "12w":
		return 12
	case "24w":
		return 24
	default:
		return DefaultRangeWeeks
	}
}

// WeekRange returns the Monday-UTC start dates of the `weeks` most recent
// ISO weeks ending at the current week, in chronological order. The result
// is always dense: every bucket is present whether or not data exists.
func WeekRange(now time.Time, weeks int) []time.Time {
	current := clock.WeekStart(now)
	out := make([]time.Time, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		out = append(out, current.AddDate(0, 0, -7*i))
	}
	return out
}
