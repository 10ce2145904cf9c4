package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetSnapshots returns the user's progress snapshots for the given plan's
// exercises, in (plan_exercise_id, set_number) order.
func (db *DB) GetSnapshots(ctx context.Context, userID int, planID uuid.UUID) ([]models.ProgressSnapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT ps.user_id, ps.plan_exercise_id, ps.set_number, ps.weight, ps.reps
		 FROM progress_snapshots ps
		 JOIN plan_exercises pe ON pe.id = ps.plan_exercise_id
		 WHERE ps.user_id = $1 AND pe.plan_id = $2
		 ORDER BY ps.plan_exercise_id, ps.set_number`,
		userID, planID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressSnapshot
	for rows.Next() {
		var s models.ProgressSnapshot
		if err := rows.Scan(&s.UserID, &s.PlanExerciseID, &s.SetNumber, &s.Weight, &s.Reps); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// replaceSnapshots deletes and re-inserts the snapshots of every plan
// exercise appearing in snaps, inside the caller's transaction.
func replaceSnapshots(ctx context.Context, tx pgx.Tx, userID int, snaps []models.ProgressSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	touched := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, s := range snaps {
		if _, ok := touched[s.PlanExerciseID]; !ok {
			touched[s.PlanExerciseID] = struct{}{}
			ids = append(ids, s.PlanExerciseID)
		}
	}

	_, err := tx.Exec(ctx,
		`DELETE FROM progress_snapshots
		 WHERE user_id = $1 AND plan_exercise_id = ANY($2)`,
		userID, ids)
	if err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}

	query := `INSERT INTO progress_snapshots (user_id, plan_exercise_id, set_number, weight, reps) VALUES `
	args := make([]any, 0, len(snaps)*5)
	valueStrings := make([]string, 0, len(snaps))
	for i, s := range snaps {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, s.UserID, s.PlanExerciseID, s.SetNumber, s.Weight, s.Reps)
	}
	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting snapshots: %w", err)
	}
	return nil
}
