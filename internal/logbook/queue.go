// Package logbook queues set completions recorded offline (e.g. in a gym
// without connectivity) and replays them against the server's sync endpoint.
// The queue lives in a local SQLite database; entries survive restarts and
// stay queued until the server acknowledges them.
package logbook

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one locally recorded set completion awaiting sync.
type Entry struct {
	ID         int64     `json:"-"`
	WorkoutID  uuid.UUID `json:"workout_id"`
	SetID      uuid.UUID `json:"set_id"`
	Weight     *float64  `json:"weight"`
	Reps       *int      `json:"reps"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Queue is the persistent offline queue at dir/logbook.db.
type Queue struct {
	db *sql.DB
}

// Open opens (or creates) the queue database.
func Open(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating logbook dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "logbook.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening logbook db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_sets (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id  TEXT NOT NULL,
		set_id      TEXT NOT NULL,
		weight      REAL,
		reps        INTEGER,
		recorded_at TIMESTAMP NOT NULL,
		synced_at   TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating pending_sets table: %w", err)
	}

	return &Queue{db: db}, nil
}

// Enqueue records a set completion for later sync.
func (q *Queue) Enqueue(e Entry) error {
	var weight any
	if e.Weight != nil {
		weight = *e.Weight
	}
	var reps any
	if e.Reps != nil {
		reps = *e.Reps
	}
	_, err := q.db.Exec(
		`INSERT INTO pending_sets (workout_id, set_id, weight, reps, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		e.WorkoutID.String(), e.SetID.String(), weight, reps, e.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("enqueueing set: %w", err)
	}
	return nil
}

// Pending returns unsynced entries in recording order.
func (q *Queue) Pending() ([]Entry, error) {
	rows, err := q.db.Query(
		`SELECT id, workout_id, set_id, weight, reps, recorded_at
		 FROM pending_sets WHERE synced_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending sets: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			workoutID  string
			setID      string
			weight     sql.NullFloat64
			reps       sql.NullInt64
			recordedAt string
		)
		if err := rows.Scan(&e.ID, &workoutID, &setID, &weight, &reps, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning pending set: %w", err)
		}
		if e.WorkoutID, err = uuid.Parse(workoutID); err != nil {
			return nil, fmt.Errorf("corrupt workout_id %q: %w", workoutID, err)
		}
		if e.SetID, err = uuid.Parse(setID); err != nil {
			return nil, fmt.Errorf("corrupt set_id %q: %w", setID, err)
		}
		if weight.Valid {
			w := weight.Float64
			e.Weight = &w
		}
		if reps.Valid {
			r := int(reps.Int64)
			e.Reps = &r
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("corrupt recorded_at %q: %w", recordedAt, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkSynced stamps entries as acknowledged by the server.
func (q *Queue) MarkSynced(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := q.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning sync tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE pending_sets SET synced_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("marking set %d synced: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}
