// Package trends derives longitudinal training analytics from completed
// workouts: weekly workout counts, per-exercise estimated-1RM curves, and a
// weighted muscle-group progress index. All queries are read-only, bounded
// to the requested week window, and return dense chart-ready series.
package trends

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/clock"
	"github.com/google/uuid"
)

// Engine answers the trend queries over a read-only store.
type Engine struct {
	store Store
	clock clock.Clock
}

// NewEngine creates an analytics engine.
func NewEngine(store Store, clk clock.Clock) *Engine {
	return &Engine{store: store, clock: clk}
}

// WorkoutTrendPoint is the completed-workout count of one week bucket.
type WorkoutTrendPoint struct {
	Week  time.Time `json:"week"`
	Count int       `json:"count"`
}

// WorkoutTrendResult is a dense weekly series of completed-workout counts.
type WorkoutTrendResult struct {
	RangeWeeks int                 `json:"range_weeks"`
	Points     []WorkoutTrendPoint `json:"points"`
}

// ExerciseOption identifies an exercise with qualifying data in the window.
type ExerciseOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ExerciseTrendPoint is the top-set e1RM of one workout.
type ExerciseTrendPoint struct {
	Date      time.Time `json:"date"`
	WorkoutID uuid.UUID `json:"workout_id"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	E1RM      float64   `json:"e1rm"`
}

// ExerciseTrendResult is the per-workout e1RM curve of one exercise plus the
// selectable alternatives.
type ExerciseTrendResult struct {
	RangeWeeks         int                  `json:"range_weeks"`
	SelectedExerciseID *uuid.UUID           `json:"selected_exercise_id,omitempty"`
	AvailableExercises []ExerciseOption     `json:"available_exercises"`
	Points             []ExerciseTrendPoint `json:"points"`
}

// MuscleGroupPoint is one week bucket of the muscle-group index. Value is
// nil for weeks without a contributing exercise.
type MuscleGroupPoint struct {
	Week  time.Time `json:"week"`
	Value *float64  `json:"value"`
}

// MuscleGroupTrendResult is a dense weekly series of the weighted index.
type MuscleGroupTrendResult struct {
	RangeWeeks  int                `json:"range_weeks"`
	MuscleGroup string             `json:"muscle_group"`
	Points      []MuscleGroupPoint `json:"points"`
}

// WorkoutsTrend counts COMPLETED workouts per week bucket, keyed by
// completion time. Empty weeks yield explicit zero points.
func (e *Engine) WorkoutsTrend(ctx context.Context, userID int, rangeStr string) (*WorkoutTrendResult, error) {
	weeks := ParseRange(rangeStr)
	buckets := WeekRange(e.clock.Now(), weeks)

	times, err := e.store.CompletedWorkoutTimes(ctx, userID, buckets[0])
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}

	counts := make(map[time.Time]int)
	for _, t := range times {
		counts[clock.WeekStart(t)]++
	}

	points := make([]WorkoutTrendPoint, 0, len(buckets))
	for _, week := range buckets {
		points = append(points, WorkoutTrendPoint{Week: week, Count: counts[week]})
	}
	return &WorkoutTrendResult{RangeWeeks: weeks, Points: points}, nil
}

// ExerciseTrend returns the top-set e1RM curve for one exercise. When the
// requested exercise is absent or has no qualifying data, the first exercise
// alphabetically with data is selected instead.
func (e *Engine) ExerciseTrend(ctx context.Context, userID int, rangeStr string, exerciseID, planID *uuid.UUID, dayType string) (*ExerciseTrendResult, error) {
	weeks := ParseRange(rangeStr)
	buckets := WeekRange(e.clock.Now(), weeks)

	rows, err := e.store.CompletedSetRows(ctx, SetRowQuery{
		UserID:  userID,
		Since:   buckets[0],
		PlanID:  planID,
		DayType: dayType,
	})
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}

	options := availableExercises(rows)
	result := &ExerciseTrendResult{
		RangeWeeks:         weeks,
		AvailableExercises: options,
		Points:             []ExerciseTrendPoint{},
	}
	if len(options) == 0 {
		return result, nil
	}

	selected := options[0].ID
	if exerciseID != nil {
		for _, o := range options {
			if o.ID == *exerciseID {
				selected = o.ID
				break
			}
		}
	}
	result.SelectedExerciseID = &selected

	var filtered []SetRow
	for _, r := range rows {
		if r.ExerciseID == selected {
			filtered = append(filtered, r)
		}
	}
	result.Points = topSetPoints(filtered)
	return result, nil
}

// MuscleGroupTrend computes the weighted weekly progress index across all
// exercises tagged with the muscle group. Each exercise is normalized
// against its own baseline (median e1RM of its first up-to-3 points) and
// weighted by its category factor.
func (e *Engine) MuscleGroupTrend(ctx context.Context, userID int, rangeStr, muscleGroup string) (*MuscleGroupTrendResult, error) {
	weeks := ParseRange(rangeStr)
	buckets := WeekRange(e.clock.Now(), weeks)

	rows, err := e.store.CompletedSetRows(ctx, SetRowQuery{
		UserID:      userID,
		Since:       buckets[0],
		MuscleGroup: muscleGroup,
	})
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}

	byExercise := make(map[uuid.UUID][]SetRow)
	categories := make(map[uuid.UUID]string)
	for _, r := range rows {
		byExercise[r.ExerciseID] = append(byExercise[r.ExerciseID], r)
		categories[r.ExerciseID] = r.Category
	}

	type weekAgg struct {
		weighted float64
		factors  float64
	}
	agg := make(map[time.Time]*weekAgg)

	for exID, exRows := range byExercise {
		points := topSetPoints(exRows)
		if len(points) == 0 {
			continue
		}

		baselineN := len(points)
		if baselineN > 3 {
			baselineN = 3
		}
		first := make([]float64, 0, baselineN)
		for _, p := range points[:baselineN] {
			first = append(first, p.E1RM)
		}
		baseline := median(first)
		if baseline == 0 {
			continue
		}

		factor := CategoryFactor(categories[exID])
		for _, p := range points {
			week := clock.WeekStart(p.Date)
			a, ok := agg[week]
			if !ok {
				a = &weekAgg{}
				agg[week] = a
			}
			a.weighted += (p.E1RM / baseline) * 100 * factor
			a.factors += factor
		}
	}

	points := make([]MuscleGroupPoint, 0, len(buckets))
	for _, week := range buckets {
		p := MuscleGroupPoint{Week: week}
		if a, ok := agg[week]; ok && a.factors > 0 {
			v := round2(a.weighted / a.factors)
			p.Value = &v
		}
		points = append(points, p)
	}
	return &MuscleGroupTrendResult{RangeWeeks: weeks, MuscleGroup: muscleGroup, Points: points}, nil
}

// availableExercises lists exercises with at least one qualifying set,
// alphabetically by name.
func availableExercises(rows []SetRow) []ExerciseOption {
	seen := make(map[uuid.UUID]string)
	for _, r := range rows {
		if r.Weight == nil || r.Reps == nil || *r.Weight <= 0 || *r.Reps <= 0 {
			continue
		}
		seen[r.ExerciseID] = r.ExerciseName
	}
	options := make([]ExerciseOption, 0, len(seen))
	for id, name := range seen {
		options = append(options, ExerciseOption{ID: id, Name: name})
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].Name != options[j].Name {
			return options[i].Name < options[j].Name
		}
		return options[i].ID.String() < options[j].ID.String()
	})
	return options
}
