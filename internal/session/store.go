package session

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ErrActiveExists is returned by Store.CreateWorkout when the single-active-
// workout constraint rejects the insert (a concurrent start won the race).
var ErrActiveExists = errors.New("user already has an active workout")

// Store is the transactional persistence contract the engine runs against.
// Lookup methods return (nil, nil) when the entity does not exist.
//
// CreateWorkout and FinalizeWorkout are multi-row writes and must be atomic:
// a failure leaves no partial state behind.
type Store interface {
	// GetPlan loads a plan with its exercises (plan order) and any explicit
	// per-set targets, including the joined exercise name and rest fallback.
	GetPlan(ctx context.Context, planID uuid.UUID) (*models.TrainingPlan, error)

	// ActiveWorkout returns the user's IN_PROGRESS or PAUSED workout, if any.
	ActiveWorkout(ctx context.Context, userID int) (*models.Workout, error)

	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	GetWorkoutSet(ctx context.Context, setID uuid.UUID) (*models.WorkoutSet, error)

	// GetWorkoutSets returns all sets of a workout ordered by sort_order.
	GetWorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error)

	// GetSnapshots returns the user's progress snapshots covering the plan's
	// exercises.
	GetSnapshots(ctx context.Context, userID int, planID uuid.UUID) ([]models.ProgressSnapshot, error)

	// CreateWorkout inserts the workout and all its sets atomically.
	// Returns ErrActiveExists if the user already has a non-terminal workout.
	CreateWorkout(ctx context.Context, w *models.Workout, sets []models.WorkoutSet) error

	// UpdateWorkout persists status, pause bookkeeping and completion fields.
	UpdateWorkout(ctx context.Context, w *models.Workout) error

	// UpdateSetValues overwrites weight and/or reps of a set. Nil values are
	// left untouched.
	UpdateSetValues(ctx context.Context, setID uuid.UUID, weight *float64, reps *int) error

	// CompleteSet stamps completed_at (and optionally weight/reps) on a set
	// that is not yet completed. Returns false without error when the set was
	// already completed, so a concurrent double-complete loses cleanly.
	CompleteSet(ctx context.Context, setID uuid.UUID, weight *float64, reps *int, completedAt time.Time) (bool, error)

	// FinalizeWorkout atomically persists the terminal workout state, forces
	// reps=0 on the given still-incomplete sets, and replaces the progress
	// snapshots of every plan exercise appearing in snaps.
	FinalizeWorkout(ctx context.Context, w *models.Workout, forcedSetIDs []uuid.UUID, snaps []models.ProgressSnapshot) error

	// PreviousCompletedSets returns the completed sets of the most recent
	// other COMPLETED workout of the same (user, plan) finished before the
	// given time, or nil if none exists.
	PreviousCompletedSets(ctx context.Context, userID int, planID uuid.UUID, before time.Time, excludeWorkoutID uuid.UUID) ([]models.WorkoutSet, error)
}
