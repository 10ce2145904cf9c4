package trends

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SetRow is one completed set joined with its workout's completion time and
// the exercise catalog data the analytics need.
type SetRow struct {
	WorkoutID    uuid.UUID
	CompletedAt  time.Time
	ExerciseID   uuid.UUID
	ExerciseName string
	Category     string
	Weight       *float64
	Reps         *int
}

// SetRowQuery bounds a completed-set fetch. Since keeps the scan inside the
// requested trend window. Optional filters narrow by exercise, plan, plan
// day type or muscle group tag.
type SetRowQuery struct {
	UserID      int
	Since       time.Time
	ExerciseID  *uuid.UUID
	PlanID      *uuid.UUID
	DayType     string
	MuscleGroup string
}

// Store is the read-only persistence contract of the analytics engine.
type Store interface {
	// CompletedWorkoutTimes returns completion timestamps of COMPLETED
	// workouts finished at or after since.
	CompletedWorkoutTimes(ctx context.Context, userID int, since time.Time) ([]time.Time, error)

	// CompletedSetRows returns completed sets of COMPLETED workouts matching
	// the query, ordered by workout completion time.
	CompletedSetRows(ctx context.Context, q SetRowQuery) ([]SetRow, error)
}
