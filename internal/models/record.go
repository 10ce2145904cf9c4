package models

import "github.com/google/uuid"

// RecordType distinguishes a weight PR from a rep PR.
type RecordType string

const (
	RecordWeight RecordType = "WEIGHT"
	RecordReps   RecordType = "REPS"
)

// PersonalRecord is a transient comparison result between the just-finished
// session and the previous completed session of the same plan. Never
// persisted.
type PersonalRecord struct {
	PlanExerciseID uuid.UUID  `json:"plan_exercise_id"`
	ExerciseID     uuid.UUID  `json:"exercise_id"`
	ExerciseName   string     `json:"exercise_name"`
	Type           RecordType `json:"type"`
	Delta          float64    `json:"delta"`
	CurrentValue   float64    `json:"current_value"`
	PreviousValue  float64    `json:"previous_value"`
}
