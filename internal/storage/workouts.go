package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const workoutColumns = `id, plan_id, user_id, plan_name, status, started_at, paused_at, total_paused_ms, completed_at`

// ActiveWorkout returns the user's IN_PROGRESS or PAUSED workout, or nil.
// The partial unique index on workouts guarantees at most one exists.
func (db *DB) ActiveWorkout(ctx context.Context, userID int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE user_id = $1 AND status IN ('IN_PROGRESS', 'PAUSED')`,
		userID)
	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active workout: %w", err)
	}
	return w, nil
}

// GetWorkout returns a workout by ID, or nil when missing.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

// CreateWorkout inserts the workout and all its sets in one transaction.
// A violation of the single-active-workout index maps to
// session.ErrActiveExists so the engine can report a clean conflict.
func (db *DB) CreateWorkout(ctx context.Context, w *models.Workout, sets []models.WorkoutSet) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (`+workoutColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		w.ID, w.PlanID, w.UserID, w.PlanName, w.Status,
		w.StartedAt, w.PausedAt, w.TotalPausedMs, w.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "workouts_one_active_per_user" {
			return session.ErrActiveExists
		}
		return fmt.Errorf("inserting workout: %w", err)
	}

	if err := insertWorkoutSets(ctx, tx, sets); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWorkout persists the mutable lifecycle fields of a workout.
func (db *DB) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workouts
		 SET status = $2, paused_at = $3, total_paused_ms = $4, completed_at = $5
		 WHERE id = $1`,
		w.ID, w.Status, w.PausedAt, w.TotalPausedMs, w.CompletedAt)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	return nil
}

// FinalizeWorkout commits the terminal state of a finished session: the
// workout row, the forced reps on never-completed sets, and the snapshot
// replacement, all in one transaction so no partial state is observable.
func (db *DB) FinalizeWorkout(ctx context.Context, w *models.Workout, forcedSetIDs []uuid.UUID, snaps []models.ProgressSnapshot) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE workouts
		 SET status = $2, paused_at = $3, total_paused_ms = $4, completed_at = $5
		 WHERE id = $1`,
		w.ID, w.Status, w.PausedAt, w.TotalPausedMs, w.CompletedAt)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}

	if len(forcedSetIDs) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE workout_sets SET reps = 0 WHERE id = ANY($1)`, forcedSetIDs)
		if err != nil {
			return fmt.Errorf("forcing incomplete sets: %w", err)
		}
	}

	if err := replaceSnapshots(ctx, tx, w.UserID, snaps); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PreviousCompletedSets returns the completed sets of the most recent other
// COMPLETED workout for the same (user, plan), or nil if none exists.
func (db *DB) PreviousCompletedSets(ctx context.Context, userID int, planID uuid.UUID, before time.Time, excludeWorkoutID uuid.UUID) ([]models.WorkoutSet, error) {
	var prevID uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM workouts
		 WHERE user_id = $1 AND plan_id = $2 AND status = 'COMPLETED'
		   AND completed_at < $3 AND id <> $4
		 ORDER BY completed_at DESC
		 LIMIT 1`,
		userID, planID, before, excludeWorkoutID).Scan(&prevID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying previous workout: %w", err)
	}

	sets, err := db.GetWorkoutSets(ctx, prevID)
	if err != nil {
		return nil, err
	}
	completed := make([]models.WorkoutSet, 0, len(sets))
	for _, s := range sets {
		if s.CompletedAt != nil {
			completed = append(completed, s)
		}
	}
	return completed, nil
}

// CompletedWorkoutTimes returns completion timestamps of COMPLETED workouts
// finished at or after since, for the workout trend.
func (db *DB) CompletedWorkoutTimes(ctx context.Context, userID int, since time.Time) ([]time.Time, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT completed_at FROM workouts
		 WHERE user_id = $1 AND status = 'COMPLETED' AND completed_at >= $2
		 ORDER BY completed_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning completion time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

var _ session.Store = (*DB)(nil)

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	err := row.Scan(&w.ID, &w.PlanID, &w.UserID, &w.PlanName, &w.Status,
		&w.StartedAt, &w.PausedAt, &w.TotalPausedMs, &w.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
