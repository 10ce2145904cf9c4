package trends

import (
	"math"
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// E1RM estimates a one-rep max from a weight/reps pair (Epley formula),
// rounded to 2 decimals: 80kg x 8 -> 101.33.
func E1RM(weight float64, reps int) float64 {
	return round2(weight * (1 + float64(reps)/30))
}

// CategoryFactor weights an exercise's contribution to the muscle-group
// index by how much strength signal its category carries.
func CategoryFactor(category string) float64 {
	switch category {
	case models.CategoryCompound:
		return 1.00
	case models.CategoryIsolation:
		return 0.85
	case models.CategoryCardio:
		return 0.70
	case models.CategoryStretching:
		return 0.60
	default:
		return 1.00
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// median of an even-length list is the mean of the two central values.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// topSetPoints collapses set rows to one point per workout: the completed
// set with the highest weight, ties broken by higher reps. Sets without a
// positive weight and reps are ignored. Points come back chronologically.
func topSetPoints(rows []SetRow) []ExerciseTrendPoint {
	type top struct {
		date   SetRow
		weight float64
		reps   int
	}
	best := make(map[uuid.UUID]*top)
	for _, r := range rows {
		if r.Weight == nil || r.Reps == nil || *r.Weight <= 0 || *r.Reps <= 0 {
			continue
		}
		w, reps := *r.Weight, *r.Reps
		b, ok := best[r.WorkoutID]
		if !ok || w > b.weight || (w == b.weight && reps > b.reps) {
			best[r.WorkoutID] = &top{date: r, weight: w, reps: reps}
		}
	}

	points := make([]ExerciseTrendPoint, 0, len(best))
	for _, b := range best {
		points = append(points, ExerciseTrendPoint{
			Date:      b.date.CompletedAt,
			WorkoutID: b.date.WorkoutID,
			Weight:    b.weight,
			Reps:      b.reps,
			E1RM:      E1RM(b.weight, b.reps),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}
