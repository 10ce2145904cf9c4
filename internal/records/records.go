// Package records compares a just-finished session against the previous
// completed session of the same plan and surfaces new bests. Everything here
// is a pure function over already-fetched sets; nothing is persisted.
package records

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

type exerciseBest struct {
	exerciseID   uuid.UUID
	exerciseName string
	maxWeight    float64
	maxReps      int
}

// Detect emits at most one record per plan exercise: a WEIGHT record when
// the max weight improved, otherwise a REPS record when the max reps
// improved. Exercises without data in both sessions are skipped.
func Detect(current, previous []models.WorkoutSet) []models.PersonalRecord {
	curBest := bestPerExercise(current)
	prevBest := bestPerExercise(previous)

	ids := make([]uuid.UUID, 0, len(curBest))
	for id := range curBest {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var out []models.PersonalRecord
	for _, id := range ids {
		cur := curBest[id]
		prev, ok := prevBest[id]
		if !ok {
			continue
		}
		if d := cur.maxWeight - prev.maxWeight; d > 0 {
			out = append(out, models.PersonalRecord{
				PlanExerciseID: id,
				ExerciseID:     cur.exerciseID,
				ExerciseName:   cur.exerciseName,
				Type:           models.RecordWeight,
				Delta:          d,
				CurrentValue:   cur.maxWeight,
				PreviousValue:  prev.maxWeight,
			})
			continue
		}
		if d := cur.maxReps - prev.maxReps; d > 0 {
			out = append(out, models.PersonalRecord{
				PlanExerciseID: id,
				ExerciseID:     cur.exerciseID,
				ExerciseName:   cur.exerciseName,
				Type:           models.RecordReps,
				Delta:          float64(d),
				CurrentValue:   float64(cur.maxReps),
				PreviousValue:  float64(prev.maxReps),
			})
		}
	}
	return out
}

// bestPerExercise collapses completed sets to per-exercise max weight and
// max reps. Unperformed values count as zero.
func bestPerExercise(sets []models.WorkoutSet) map[uuid.UUID]exerciseBest {
	best := make(map[uuid.UUID]exerciseBest)
	for _, s := range sets {
		if !s.Completed() {
			continue
		}
		b, ok := best[s.PlanExerciseID]
		if !ok {
			b = exerciseBest{exerciseID: s.ExerciseID, exerciseName: s.ExerciseName}
		}
		if s.Weight != nil && *s.Weight > b.maxWeight {
			b.maxWeight = *s.Weight
		}
		if s.Reps != nil && *s.Reps > b.maxReps {
			b.maxReps = *s.Reps
		}
		best[s.PlanExerciseID] = b
	}
	return best
}
