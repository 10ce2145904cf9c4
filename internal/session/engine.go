package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/clock"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/google/uuid"
)

// Engine owns the workout session lifecycle: start, pause/resume, set
// completion, finish and abandon. Every operation takes a single `now`
// snapshot from the injected clock so pause accounting and stamped
// timestamps can't skew within one call.
type Engine struct {
	store Store
	clock clock.Clock
	log   *slog.Logger
}

// NewEngine creates a session engine.
func NewEngine(store Store, clk clock.Clock, log *slog.Logger) *Engine {
	return &Engine{store: store, clock: clk, log: log}
}

// Detail is a workout with its sets and current active-time accounting.
type Detail struct {
	Workout   models.Workout      `json:"workout"`
	Sets      []models.WorkoutSet `json:"sets"`
	ElapsedMs int64               `json:"elapsed_ms"`
}

// CompletionResult is the UI cue returned after completing a set: the rest
// timer for the set just done and the next set in global order, if any.
type CompletionResult struct {
	Set         models.WorkoutSet `json:"set"`
	RestSeconds int               `json:"rest_seconds"`
	NextSetID   *uuid.UUID        `json:"next_set_id,omitempty"`
}

// FinishResult is the finalized workout plus any personal records detected
// against the previous completed session of the same plan.
type FinishResult struct {
	Workout models.Workout          `json:"workout"`
	Records []models.PersonalRecord `json:"records"`
}

// Start materializes a new session from the plan and creates it IN_PROGRESS.
// Fails with a conflict if the user already has a non-terminal workout, and
// with forbidden if the plan belongs to another user.
func (e *Engine) Start(ctx context.Context, userID int, planID uuid.UUID) (*Detail, error) {
	now := e.clock.Now()

	active, err := e.store.ActiveWorkout(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking active workout: %w", err)
	}
	if active != nil {
		return nil, apperr.Conflict("an active session already exists")
	}

	plan, err := e.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	if plan == nil {
		return nil, apperr.NotFound("plan %s not found", planID)
	}
	if !plan.UsableBy(userID) {
		return nil, apperr.Forbidden("plan %s belongs to another user", planID)
	}

	snaps, err := e.store.GetSnapshots(ctx, userID, planID)
	if err != nil {
		return nil, fmt.Errorf("loading progress snapshots: %w", err)
	}

	w := &models.Workout{
		ID:        uuid.New(),
		PlanID:    plan.ID,
		UserID:    userID,
		PlanName:  plan.Name,
		Status:    models.StatusInProgress,
		StartedAt: now,
	}
	sets := Materialize(plan, snaps)
	for i := range sets {
		sets[i].WorkoutID = w.ID
	}

	if err := e.store.CreateWorkout(ctx, w, sets); err != nil {
		if errors.Is(err, ErrActiveExists) {
			return nil, apperr.Conflict("an active session already exists")
		}
		return nil, fmt.Errorf("creating workout: %w", err)
	}

	e.log.Info("session started", "workout_id", w.ID, "plan", plan.Name, "sets", len(sets), "user_id", userID)
	return &Detail{Workout: *w, Sets: sets}, nil
}

// Get returns a workout with its sets, enforcing ownership.
func (e *Engine) Get(ctx context.Context, userID int, workoutID uuid.UUID) (*Detail, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	sets, err := e.store.GetWorkoutSets(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sets: %w", err)
	}
	return &Detail{Workout: *w, Sets: sets, ElapsedMs: clock.Elapsed(w, now).Milliseconds()}, nil
}

// Active returns the user's current non-terminal session, or nil.
func (e *Engine) Active(ctx context.Context, userID int) (*Detail, error) {
	w, err := e.store.ActiveWorkout(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active workout: %w", err)
	}
	if w == nil {
		return nil, nil
	}
	return e.Get(ctx, userID, w.ID)
}

// Pause moves an IN_PROGRESS session to PAUSED.
func (e *Engine) Pause(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status != models.StatusInProgress {
		return nil, apperr.InvalidTransition("cannot pause a session in status %s", w.Status)
	}
	w.Status = models.StatusPaused
	w.PausedAt = &now
	if err := e.store.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("pausing workout: %w", err)
	}
	return w, nil
}

// Resume moves a PAUSED session back to IN_PROGRESS, folding the finished
// pause interval into the cumulative total.
func (e *Engine) Resume(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status != models.StatusPaused {
		return nil, apperr.InvalidTransition("cannot resume a session in status %s", w.Status)
	}
	if w.PausedAt != nil {
		w.TotalPausedMs += now.Sub(*w.PausedAt).Milliseconds()
	}
	w.PausedAt = nil
	w.Status = models.StatusInProgress
	if err := e.store.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("resuming workout: %w", err)
	}
	return w, nil
}

// UpdateSet corrects the logged weight/reps of a set at any time before the
// session reaches a terminal state. Does not touch completion.
func (e *Engine) UpdateSet(ctx context.Context, userID int, workoutID, setID uuid.UUID, weight *float64, reps *int) (*models.WorkoutSet, error) {
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, apperr.InvalidTransition("cannot update sets of a session in status %s", w.Status)
	}
	set, err := e.loadSet(ctx, w, setID)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpdateSetValues(ctx, setID, weight, reps); err != nil {
		return nil, fmt.Errorf("updating set: %w", err)
	}
	if weight != nil {
		set.Weight = weight
	}
	if reps != nil {
		set.Reps = reps
	}
	return set, nil
}

// CompleteSet stamps a set as performed, optionally updating its logged
// values first, and returns the rest timer plus the next incomplete set in
// global order. Completing a set twice fails; the first stamp is never
// overwritten.
func (e *Engine) CompleteSet(ctx context.Context, userID int, workoutID, setID uuid.UUID, weight *float64, reps *int) (*CompletionResult, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, apperr.AlreadyCompleted("session is already %s", w.Status)
	}
	set, err := e.loadSet(ctx, w, setID)
	if err != nil {
		return nil, err
	}
	if set.Completed() {
		return nil, apperr.AlreadyCompleted("set %s is already completed", setID)
	}

	ok, err := e.store.CompleteSet(ctx, setID, weight, reps, now)
	if err != nil {
		return nil, fmt.Errorf("completing set: %w", err)
	}
	if !ok {
		// A concurrent completion won the race.
		return nil, apperr.AlreadyCompleted("set %s is already completed", setID)
	}

	if weight != nil {
		set.Weight = weight
	}
	if reps != nil {
		set.Reps = reps
	}
	set.CompletedAt = &now

	sets, err := e.store.GetWorkoutSets(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sets: %w", err)
	}
	return &CompletionResult{
		Set:         *set,
		RestSeconds: set.RestSeconds,
		NextSetID:   nextIncompleteSet(sets),
	}, nil
}

// Finish completes the session. Without forceComplete it refuses while sets
// remain incomplete, listing them so the caller can confirm. With
// forceComplete the remaining sets get reps forced to 0; they are not
// stamped completed and therefore stay out of the snapshot rebuild.
func (e *Engine) Finish(ctx context.Context, userID int, workoutID uuid.UUID, forceComplete bool) (*FinishResult, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, apperr.InvalidTransition("cannot finish a session in status %s", w.Status)
	}

	sets, err := e.store.GetWorkoutSets(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sets: %w", err)
	}

	var missing []uuid.UUID
	for _, s := range sets {
		if !s.Completed() {
			missing = append(missing, s.ID)
		}
	}
	if len(missing) > 0 && !forceComplete {
		return nil, apperr.ConfirmationRequired(missing)
	}

	finalizePause(w, now)
	w.Status = models.StatusCompleted
	w.CompletedAt = &now

	snaps := buildSnapshots(userID, sets)
	if err := e.store.FinalizeWorkout(ctx, w, missing, snaps); err != nil {
		return nil, fmt.Errorf("finalizing workout: %w", err)
	}

	result := &FinishResult{Workout: *w, Records: []models.PersonalRecord{}}

	prev, err := e.store.PreviousCompletedSets(ctx, userID, w.PlanID, now, w.ID)
	if err != nil {
		// Record detection is best-effort decoration; the finish itself
		// already committed.
		e.log.Warn("personal record lookup failed", "workout_id", w.ID, "error", err)
		return result, nil
	}
	if prev != nil {
		result.Records = records.Detect(completedOnly(sets), prev)
	}

	e.log.Info("session finished", "workout_id", w.ID, "forced_sets", len(missing), "records", len(result.Records))
	return result, nil
}

// Abandon terminates the session without a snapshot rewrite or record check.
func (e *Engine) Abandon(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	now := e.clock.Now()
	w, err := e.loadOwned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, apperr.InvalidTransition("cannot abandon a session in status %s", w.Status)
	}
	finalizePause(w, now)
	w.Status = models.StatusAbandoned
	w.CompletedAt = &now
	if err := e.store.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("abandoning workout: %w", err)
	}
	e.log.Info("session abandoned", "workout_id", w.ID)
	return w, nil
}

func (e *Engine) loadOwned(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	w, err := e.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}
	if w == nil {
		return nil, apperr.NotFound("workout %s not found", workoutID)
	}
	if w.UserID != userID {
		return nil, apperr.Forbidden("workout %s belongs to another user", workoutID)
	}
	return w, nil
}

func (e *Engine) loadSet(ctx context.Context, w *models.Workout, setID uuid.UUID) (*models.WorkoutSet, error) {
	set, err := e.store.GetWorkoutSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("loading set: %w", err)
	}
	if set == nil || set.WorkoutID != w.ID {
		return nil, apperr.NotFound("set %s not found in workout %s", setID, w.ID)
	}
	return set, nil
}

// finalizePause folds an open pause into the cumulative total before a
// terminal transition.
func finalizePause(w *models.Workout, now time.Time) {
	if w.Status == models.StatusPaused && w.PausedAt != nil {
		w.TotalPausedMs += now.Sub(*w.PausedAt).Milliseconds()
	}
	w.PausedAt = nil
}

// nextIncompleteSet returns the ID of the smallest-sort-order set without a
// completion stamp, or nil if none remain.
func nextIncompleteSet(sets []models.WorkoutSet) *uuid.UUID {
	var next *models.WorkoutSet
	for i := range sets {
		s := &sets[i]
		if s.Completed() {
			continue
		}
		if next == nil || s.SortOrder < next.SortOrder {
			next = s
		}
	}
	if next == nil {
		return nil
	}
	id := next.ID
	return &id
}

// buildSnapshots turns the completed sets of a finished session into the new
// progress baseline. Completed sets are renumbered 1..k per plan exercise so
// a partially completed exercise still yields a gap-free slot sequence.
func buildSnapshots(userID int, sets []models.WorkoutSet) []models.ProgressSnapshot {
	completed := completedOnly(sets)
	sort.SliceStable(completed, func(i, j int) bool {
		a, b := completed[i], completed[j]
		if a.PlanExerciseID != b.PlanExerciseID {
			return a.PlanExerciseID.String() < b.PlanExerciseID.String()
		}
		return a.SetNumber < b.SetNumber
	})

	var snaps []models.ProgressSnapshot
	counter := make(map[uuid.UUID]int)
	for _, s := range completed {
		counter[s.PlanExerciseID]++
		snaps = append(snaps, models.ProgressSnapshot{
			UserID:         userID,
			PlanExerciseID: s.PlanExerciseID,
			SetNumber:      counter[s.PlanExerciseID],
			Weight:         s.Weight,
			Reps:           s.Reps,
		})
	}
	return snaps
}

func completedOnly(sets []models.WorkoutSet) []models.WorkoutSet {
	out := make([]models.WorkoutSet, 0, len(sets))
	for _, s := range sets {
		if s.Completed() {
			out = append(out, s)
		}
	}
	return out
}
