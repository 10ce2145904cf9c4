package models

import "github.com/google/uuid"

// Exercise is a catalog entry. Category and muscle groups drive the
// analytics engine; RestSeconds is the exercise's recommended rest, used
// as a fallback when a plan exercise doesn't override it.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	MuscleGroups []string  `json:"muscle_groups"`
	RestSeconds  *int      `json:"rest_seconds,omitempty"`
}

// Exercise categories.
const (
	CategoryCompound   = "compound"
	CategoryIsolation  = "isolation"
	CategoryCardio     = "cardio"
	CategoryStretching = "stretching"
)

// TrainingPlan is a read-only plan definition. A nil UserID marks a
// shared/system plan usable by anyone.
type TrainingPlan struct {
	ID        uuid.UUID      `json:"id"`
	UserID    *int           `json:"user_id,omitempty"`
	Name      string         `json:"name"`
	DayType   string         `json:"day_type,omitempty"`
	Exercises []PlanExercise `json:"exercises"`
}

// UsableBy reports whether the given user may start a session from this plan.
func (p *TrainingPlan) UsableBy(userID int) bool {
	return p.UserID == nil || *p.UserID == userID
}

// PlanExercise is one exercise slot in a plan, ordered by SortOrder.
// ExerciseName and ExerciseRestSeconds are joined from the exercise catalog.
type PlanExercise struct {
	ID                  uuid.UUID `json:"id"`
	PlanID              uuid.UUID `json:"plan_id"`
	ExerciseID          uuid.UUID `json:"exercise_id"`
	ExerciseName        string    `json:"exercise_name"`
	ExerciseRestSeconds *int      `json:"-"`
	Sets                int       `json:"sets"`
	MinReps             int       `json:"min_reps"`
	MaxReps             int       `json:"max_reps"`
	TargetWeight        *float64  `json:"target_weight,omitempty"`
	RestSeconds         *int      `json:"rest_seconds,omitempty"`
	SortOrder           int       `json:"sort_order"`
	PlanSets            []PlanSet `json:"plan_sets,omitempty"`
}

// PlanSet is an explicit per-set target. Plans without stored PlanSet rows
// get uniform sets synthesized from the PlanExercise targets.
type PlanSet struct {
	ID             uuid.UUID `json:"id"`
	PlanExerciseID uuid.UUID `json:"plan_exercise_id"`
	SetNumber      int       `json:"set_number"`
	TargetWeight   *float64  `json:"target_weight,omitempty"`
	TargetMinReps  int       `json:"target_min_reps"`
	TargetMaxReps  int       `json:"target_max_reps"`
}
