package session

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// DefaultRestSeconds applies when neither the plan exercise nor the exercise
// catalog specifies a rest time.
const DefaultRestSeconds = 90

type snapKey struct {
	planExerciseID uuid.UUID
	setNumber      int
}

// Materialize expands a plan into the concrete sets of a new session.
//
// Exercises are walked in plan order, their sets in set-number order. Targets
// come from explicit PlanSet rows when stored, otherwise `sets` uniform rows
// are synthesized from the plan exercise itself. Weight and reps are
// pre-filled from the matching progress snapshot when one exists. SortOrder
// is a strictly increasing counter across the whole emission so the session
// has a single total completion order.
func Materialize(plan *models.TrainingPlan, snaps []models.ProgressSnapshot) []models.WorkoutSet {
	prior := make(map[snapKey]models.ProgressSnapshot, len(snaps))
	for _, s := range snaps {
		prior[snapKey{s.PlanExerciseID, s.SetNumber}] = s
	}

	exercises := make([]models.PlanExercise, len(plan.Exercises))
	copy(exercises, plan.Exercises)
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].SortOrder < exercises[j].SortOrder
	})

	var out []models.WorkoutSet
	order := 1
	for _, ex := range exercises {
		rest := DefaultRestSeconds
		switch {
		case ex.RestSeconds != nil:
			rest = *ex.RestSeconds
		case ex.ExerciseRestSeconds != nil:
			rest = *ex.ExerciseRestSeconds
		}

		for _, ps := range planSetsFor(ex) {
			set := models.WorkoutSet{
				ID:             uuid.New(),
				PlanExerciseID: ex.ID,
				ExerciseID:     ex.ExerciseID,
				ExerciseName:   ex.ExerciseName,
				SetNumber:      ps.SetNumber,
				TargetWeight:   ps.TargetWeight,
				TargetMinReps:  ps.TargetMinReps,
				TargetMaxReps:  ps.TargetMaxReps,
				RestSeconds:    rest,
				SortOrder:      order,
			}
			if snap, ok := prior[snapKey{ex.ID, ps.SetNumber}]; ok {
				set.Weight = snap.Weight
				set.Reps = snap.Reps
			}
			out = append(out, set)
			order++
		}
	}
	return out
}

// planSetsFor returns the exercise's explicit set targets in set-number
// order, or synthesizes uniform rows from the exercise targets.
func planSetsFor(ex models.PlanExercise) []models.PlanSet {
	if len(ex.PlanSets) > 0 {
		sets := make([]models.PlanSet, len(ex.PlanSets))
		copy(sets, ex.PlanSets)
		sort.SliceStable(sets, func(i, j int) bool {
			return sets[i].SetNumber < sets[j].SetNumber
		})
		return sets
	}

	sets := make([]models.PlanSet, 0, ex.Sets)
	for n := 1; n <= ex.Sets; n++ {
		sets = append(sets, models.PlanSet{
			PlanExerciseID: ex.ID,
			SetNumber:      n,
			TargetWeight:   ex.TargetWeight,
			TargetMinReps:  ex.MinReps,
			TargetMaxReps:  ex.MaxReps,
		})
	}
	return sets
}
