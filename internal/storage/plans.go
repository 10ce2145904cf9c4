package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetPlan loads a training plan with its exercises in plan order, the joined
// exercise catalog data, and any explicit per-set targets. Returns (nil, nil)
// when the plan does not exist.
func (db *DB) GetPlan(ctx context.Context, planID uuid.UUID) (*models.TrainingPlan, error) {
	plan := &models.TrainingPlan{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, COALESCE(day_type, '')
		 FROM training_plans
		 WHERE id = $1`,
		planID).Scan(&plan.ID, &plan.UserID, &plan.Name, &plan.DayType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT pe.id, pe.plan_id, pe.exercise_id, e.name, e.rest_seconds,
		        pe.sets, pe.min_reps, pe.max_reps, pe.target_weight,
		        pe.rest_seconds, pe.sort_order
		 FROM plan_exercises pe
		 JOIN exercises e ON e.id = pe.exercise_id
		 WHERE pe.plan_id = $1
		 ORDER BY pe.sort_order ASC`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("querying plan exercises: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var pe models.PlanExercise
		if err := rows.Scan(&pe.ID, &pe.PlanID, &pe.ExerciseID, &pe.ExerciseName,
			&pe.ExerciseRestSeconds, &pe.Sets, &pe.MinReps, &pe.MaxReps,
			&pe.TargetWeight, &pe.RestSeconds, &pe.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning plan exercise: %w", err)
		}
		byID[pe.ID] = len(plan.Exercises)
		plan.Exercises = append(plan.Exercises, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(plan.Exercises) == 0 {
		return plan, nil
	}

	ids := make([]uuid.UUID, 0, len(plan.Exercises))
	for _, pe := range plan.Exercises {
		ids = append(ids, pe.ID)
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT id, plan_exercise_id, set_number, target_weight, target_min_reps, target_max_reps
		 FROM plan_sets
		 WHERE plan_exercise_id = ANY($1)
		 ORDER BY set_number ASC`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying plan sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var ps models.PlanSet
		if err := setRows.Scan(&ps.ID, &ps.PlanExerciseID, &ps.SetNumber,
			&ps.TargetWeight, &ps.TargetMinReps, &ps.TargetMaxReps); err != nil {
			return nil, fmt.Errorf("scanning plan set: %w", err)
		}
		if i, ok := byID[ps.PlanExerciseID]; ok {
			plan.Exercises[i].PlanSets = append(plan.Exercises[i].PlanSets, ps)
		}
	}
	return plan, setRows.Err()
}
