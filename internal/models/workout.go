package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutStatus is the session lifecycle state.
type WorkoutStatus string

const (
	StatusInProgress WorkoutStatus = "IN_PROGRESS"
	StatusPaused     WorkoutStatus = "PAUSED"
	StatusCompleted  WorkoutStatus = "COMPLETED"
	StatusAbandoned  WorkoutStatus = "ABANDONED"
)

// Terminal reports whether no further transitions are allowed.
func (s WorkoutStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Workout is the session aggregate root. PlanName is captured at creation
// time and survives later plan renames. PausedAt is set only while PAUSED;
// TotalPausedMs accumulates finished pause intervals and never decreases.
type Workout struct {
	ID            uuid.UUID     `json:"id"`
	PlanID        uuid.UUID     `json:"plan_id"`
	UserID        int           `json:"user_id"`
	PlanName      string        `json:"plan_name"`
	Status        WorkoutStatus `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	PausedAt      *time.Time    `json:"paused_at,omitempty"`
	TotalPausedMs int64         `json:"total_paused_ms"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// WorkoutSet is one concrete set of a session. SortOrder is global across
// the whole workout and defines the completion sequence. CompletedAt is
// stamped exactly once and never cleared. ExerciseName is joined from the
// catalog by the storage layer.
type WorkoutSet struct {
	ID             uuid.UUID  `json:"id"`
	WorkoutID      uuid.UUID  `json:"workout_id"`
	PlanExerciseID uuid.UUID  `json:"plan_exercise_id"`
	ExerciseID     uuid.UUID  `json:"exercise_id"`
	ExerciseName   string     `json:"exercise_name,omitempty"`
	SetNumber      int        `json:"set_number"`
	TargetWeight   *float64   `json:"target_weight,omitempty"`
	TargetMinReps  int        `json:"target_min_reps"`
	TargetMaxReps  int        `json:"target_max_reps"`
	Weight         *float64   `json:"weight,omitempty"`
	Reps           *int       `json:"reps,omitempty"`
	RestSeconds    int        `json:"rest_seconds"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	SortOrder      int        `json:"sort_order"`
}

// Completed reports whether the set has been performed.
func (s *WorkoutSet) Completed() bool {
	return s.CompletedAt != nil
}

// ProgressSnapshot is the last known weight/reps for one plan-exercise set
// slot, used to pre-fill the next session. Fully replaced after each
// completed session for the plan exercises touched.
type ProgressSnapshot struct {
	UserID         int       `json:"user_id"`
	PlanExerciseID uuid.UUID `json:"plan_exercise_id"`
	SetNumber      int       `json:"set_number"`
	Weight         *float64  `json:"weight,omitempty"`
	Reps           *int      `json:"reps,omitempty"`
}
