package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// insertWorkoutSets batch-inserts the materialized sets of a new session.
func insertWorkoutSets(ctx context.Context, tx pgx.Tx, sets []models.WorkoutSet) error {
	if len(sets) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (id, workout_id, plan_exercise_id, exercise_id,
		set_number, target_weight, target_min_reps, target_max_reps,
		weight, reps, rest_seconds, sort_order) VALUES `
	args := make([]any, 0, len(sets)*12)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		base := i * 12
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12,
		))
		args = append(args, s.ID, s.WorkoutID, s.PlanExerciseID, s.ExerciseID,
			s.SetNumber, s.TargetWeight, s.TargetMinReps, s.TargetMaxReps,
			s.Weight, s.Reps, s.RestSeconds, s.SortOrder)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

const workoutSetColumns = `ws.id, ws.workout_id, ws.plan_exercise_id, ws.exercise_id, e.name,
	ws.set_number, ws.target_weight, ws.target_min_reps, ws.target_max_reps,
	ws.weight, ws.reps, ws.rest_seconds, ws.completed_at, ws.sort_order`

// GetWorkoutSets returns all sets of a workout in global completion order.
func (db *DB) GetWorkoutSets(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutSetColumns+`
		 FROM workout_sets ws
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.workout_id = $1
		 ORDER BY ws.sort_order ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSet
	for rows.Next() {
		s, err := scanWorkoutSet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// GetWorkoutSet returns a single set by ID, or nil when missing.
func (db *DB) GetWorkoutSet(ctx context.Context, setID uuid.UUID) (*models.WorkoutSet, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutSetColumns+`
		 FROM workout_sets ws
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.id = $1`,
		setID)
	s, err := scanWorkoutSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout set: %w", err)
	}
	return s, nil
}

// UpdateSetValues overwrites weight and/or reps; nil leaves a field alone.
func (db *DB) UpdateSetValues(ctx context.Context, setID uuid.UUID, weight *float64, reps *int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets
		 SET weight = COALESCE($2, weight), reps = COALESCE($3, reps)
		 WHERE id = $1`,
		setID, weight, reps)
	if err != nil {
		return fmt.Errorf("updating set values: %w", err)
	}
	return nil
}

// CompleteSet stamps completed_at on a not-yet-completed set. The guard in
// the WHERE clause makes concurrent double-completes lose cleanly: the
// second caller sees zero rows affected and no error.
func (db *DB) CompleteSet(ctx context.Context, setID uuid.UUID, weight *float64, reps *int, completedAt time.Time) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets
		 SET weight = COALESCE($2, weight), reps = COALESCE($3, reps), completed_at = $4
		 WHERE id = $1 AND completed_at IS NULL`,
		setID, weight, reps, completedAt)
	if err != nil {
		return false, fmt.Errorf("completing set: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanWorkoutSet(row pgx.Row) (*models.WorkoutSet, error) {
	var s models.WorkoutSet
	err := row.Scan(&s.ID, &s.WorkoutID, &s.PlanExerciseID, &s.ExerciseID, &s.ExerciseName,
		&s.SetNumber, &s.TargetWeight, &s.TargetMinReps, &s.TargetMaxReps,
		&s.Weight, &s.Reps, &s.RestSeconds, &s.CompletedAt, &s.SortOrder)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
