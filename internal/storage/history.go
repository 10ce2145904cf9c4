package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/trends"
)

// CompletedSetRows returns completed sets of COMPLETED workouts matching
// the query, joined with exercise catalog data, ordered by workout
// completion time. Implements trends.Store.
func (db *DB) CompletedSetRows(ctx context.Context, q trends.SetRowQuery) ([]trends.SetRow, error) {
	query := `SELECT ws.workout_id, w.completed_at, ws.exercise_id, e.name, e.category, ws.weight, ws.reps
		 FROM workout_sets ws
		 JOIN workouts w ON w.id = ws.workout_id
		 JOIN exercises e ON e.id = ws.exercise_id
		 LEFT JOIN training_plans tp ON tp.id = w.plan_id
		 WHERE w.user_id = $1 AND w.status = 'COMPLETED'
		   AND w.completed_at >= $2 AND ws.completed_at IS NOT NULL`
	args := []any{q.UserID, q.Since}

	if q.ExerciseID != nil {
		args = append(args, *q.ExerciseID)
		query += fmt.Sprintf(" AND ws.exercise_id = $%d", len(args))
	}
	if q.PlanID != nil {
		args = append(args, *q.PlanID)
		query += fmt.Sprintf(" AND w.plan_id = $%d", len(args))
	}
	if q.DayType != "" {
		args = append(args, q.DayType)
		query += fmt.Sprintf(" AND tp.day_type = $%d", len(args))
	}
	if q.MuscleGroup != "" {
		args = append(args, q.MuscleGroup)
		query += fmt.Sprintf(" AND $%d = ANY(e.muscle_groups)", len(args))
	}
	query += " ORDER BY w.completed_at ASC, ws.sort_order ASC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying completed set rows: %w", err)
	}
	defer rows.Close()

	var result []trends.SetRow
	for rows.Next() {
		var r trends.SetRow
		if err := rows.Scan(&r.WorkoutID, &r.CompletedAt, &r.ExerciseID,
			&r.ExerciseName, &r.Category, &r.Weight, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning set row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecentWorkouts returns the user's most recent workouts, newest first.
func (db *DB) RecentWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.PlanID, &w.UserID, &w.PlanName, &w.Status,
			&w.StartedAt, &w.PausedAt, &w.TotalPausedMs, &w.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

var _ trends.Store = (*DB)(nil)
