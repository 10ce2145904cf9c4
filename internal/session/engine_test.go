package session

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	plans     map[uuid.UUID]*models.TrainingPlan
	workouts  map[uuid.UUID]*models.Workout
	sets      map[uuid.UUID]*models.WorkoutSet
	snapshots []models.ProgressSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans:    make(map[uuid.UUID]*models.TrainingPlan),
		workouts: make(map[uuid.UUID]*models.Workout),
		sets:     make(map[uuid.UUID]*models.WorkoutSet),
	}
}

func (f *fakeStore) GetPlan(_ context.Context, planID uuid.UUID) (*models.TrainingPlan, error) {
	p, ok := f.plans[planID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStore) ActiveWorkout(_ context.Context, userID int) (*models.Workout, error) {
	for _, w := range f.workouts {
		if w.UserID == userID && !w.Status.Terminal() {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (f *fakeStore) GetWorkoutSet(_ context.Context, setID uuid.UUID) (*models.WorkoutSet, error) {
	s, ok := f.sets[setID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) GetWorkoutSets(_ context.Context, workoutID uuid.UUID) ([]models.WorkoutSet, error) {
	var out []models.WorkoutSet
	for _, s := range f.sets {
		if s.WorkoutID == workoutID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeStore) GetSnapshots(_ context.Context, userID int, planID uuid.UUID) ([]models.ProgressSnapshot, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, nil
	}
	inPlan := make(map[uuid.UUID]bool)
	for _, pe := range plan.Exercises {
		inPlan[pe.ID] = true
	}
	var out []models.ProgressSnapshot
	for _, s := range f.snapshots {
		if s.UserID == userID && inPlan[s.PlanExerciseID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, w *models.Workout, sets []models.WorkoutSet) error {
	for _, existing := range f.workouts {
		if existing.UserID == w.UserID && !existing.Status.Terminal() {
			return ErrActiveExists
		}
	}
	cp := *w
	f.workouts[w.ID] = &cp
	for i := range sets {
		s := sets[i]
		f.sets[s.ID] = &s
	}
	return nil
}

func (f *fakeStore) UpdateWorkout(_ context.Context, w *models.Workout) error {
	cp := *w
	f.workouts[w.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateSetValues(_ context.Context, setID uuid.UUID, weight *float64, reps *int) error {
	s := f.sets[setID]
	if weight != nil {
		s.Weight = weight
	}
	if reps != nil {
		s.Reps = reps
	}
	return nil
}

func (f *fakeStore) CompleteSet(_ context.Context, setID uuid.UUID, weight *float64, reps *int, completedAt time.Time) (bool, error) {
	s := f.sets[setID]
	if s.CompletedAt != nil {
		return false, nil
	}
	if weight != nil {
		s.Weight = weight
	}
	if reps != nil {
		s.Reps = reps
	}
	t := completedAt
	s.CompletedAt = &t
	return true, nil
}

func (f *fakeStore) FinalizeWorkout(_ context.Context, w *models.Workout, forcedSetIDs []uuid.UUID, snaps []models.ProgressSnapshot) error {
	cp := *w
	f.workouts[w.ID] = &cp
	zero := 0
	for _, id := range forcedSetIDs {
		f.sets[id].Reps = &zero
	}
	touched := make(map[uuid.UUID]bool)
	for _, s := range snaps {
		touched[s.PlanExerciseID] = true
	}
	var kept []models.ProgressSnapshot
	for _, s := range f.snapshots {
		if !(s.UserID == w.UserID && touched[s.PlanExerciseID]) {
			kept = append(kept, s)
		}
	}
	f.snapshots = append(kept, snaps...)
	return nil
}

func (f *fakeStore) PreviousCompletedSets(_ context.Context, userID int, planID uuid.UUID, before time.Time, excludeWorkoutID uuid.UUID) ([]models.WorkoutSet, error) {
	var prev *models.Workout
	for _, w := range f.workouts {
		if w.UserID != userID || w.PlanID != planID || w.Status != models.StatusCompleted {
			continue
		}
		if w.ID == excludeWorkoutID || w.CompletedAt == nil || !w.CompletedAt.Before(before) {
			continue
		}
		if prev == nil || w.CompletedAt.After(*prev.CompletedAt) {
			prev = w
		}
	}
	if prev == nil {
		return nil, nil
	}
	var out []models.WorkoutSet
	for _, s := range f.sets {
		if s.WorkoutID == prev.ID && s.CompletedAt != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

const testUser = 1

// testPlan builds a two-exercise plan: squats (3 uniform sets) and curls
// (2 uniform sets), with plan-level rest on squats only.
func testPlan(store *fakeStore) *models.TrainingPlan {
	squatsID, curlsID := uuid.New(), uuid.New()
	plan := &models.TrainingPlan{
		ID:   uuid.New(),
		Name: "Leg Day",
		Exercises: []models.PlanExercise{
			{
				ID:           squatsID,
				ExerciseID:   uuid.New(),
				ExerciseName: "Back Squat",
				Sets:         3,
				MinReps:      5,
				MaxReps:      8,
				TargetWeight: ptrF(100),
				RestSeconds:  ptrI(180),
				SortOrder:    1,
			},
			{
				ID:           curlsID,
				ExerciseID:   uuid.New(),
				ExerciseName: "Leg Curl",
				Sets:         2,
				MinReps:      10,
				MaxReps:      12,
				SortOrder:    2,
			},
		},
	}
	store.plans[plan.ID] = plan
	return plan
}

func newTestEngine(store *fakeStore, clk *fakeClock) *Engine {
	return NewEngine(store, clk, slog.New(slog.DiscardHandler))
}

func TestStartSession(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)

	detail, err := eng.Start(context.Background(), testUser, plan.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	w := detail.Workout
	if w.Status != models.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", w.Status)
	}
	if !w.StartedAt.Equal(clk.now) {
		t.Errorf("startedAt = %v, want %v", w.StartedAt, clk.now)
	}
	if w.TotalPausedMs != 0 {
		t.Errorf("totalPausedMs = %d, want 0", w.TotalPausedMs)
	}
	if w.PlanName != "Leg Day" {
		t.Errorf("planName = %q, want %q", w.PlanName, "Leg Day")
	}
	if len(detail.Sets) != 5 {
		t.Fatalf("sets = %d, want 5", len(detail.Sets))
	}
	for i, s := range detail.Sets {
		if s.SortOrder != i+1 {
			t.Errorf("set %d sortOrder = %d, want %d", i, s.SortOrder, i+1)
		}
		if s.WorkoutID != w.ID {
			t.Errorf("set %d workoutID mismatch", i)
		}
	}
}

func TestStartConflictWhileActive(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)

	if _, err := eng.Start(context.Background(), testUser, plan.ID); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	_, err := eng.Start(context.Background(), testUser, plan.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("second Start() error = %v, want conflict", err)
	}

	// Another user is unaffected by the invariant.
	if _, err := eng.Start(context.Background(), 2, plan.ID); err != nil {
		t.Errorf("Start() for other user error = %v", err)
	}
}

func TestStartPlanChecks(t *testing.T) {
	store := newFakeStore()
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)

	_, err := eng.Start(context.Background(), testUser, uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown plan error = %v, want not found", err)
	}

	plan := testPlan(store)
	owner := 99
	plan.UserID = &owner
	_, err = eng.Start(context.Background(), testUser, plan.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("foreign plan error = %v, want forbidden", err)
	}
}

func TestStartPrefillsFromSnapshots(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	squats := plan.Exercises[0].ID
	store.snapshots = []models.ProgressSnapshot{
		{UserID: testUser, PlanExerciseID: squats, SetNumber: 1, Weight: ptrF(95), Reps: ptrI(8)},
		{UserID: testUser, PlanExerciseID: squats, SetNumber: 2, Weight: ptrF(97.5), Reps: ptrI(6)},
	}
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)

	detail, err := eng.Start(context.Background(), testUser, plan.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	first := detail.Sets[0]
	if first.Weight == nil || *first.Weight != 95 || first.Reps == nil || *first.Reps != 8 {
		t.Errorf("set 1 prefill = (%v, %v), want (95, 8)", first.Weight, first.Reps)
	}
	third := detail.Sets[2]
	if third.Weight != nil || third.Reps != nil {
		t.Errorf("set 3 should have no prefill, got (%v, %v)", third.Weight, third.Reps)
	}
}

func TestPauseResumeAccounting(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	clk := &fakeClock{now: start}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, err := eng.Start(ctx, testUser, plan.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	id := detail.Workout.ID

	// Pause at T+10s, resume at T+40s, finish at T+50s.
	clk.advance(10 * time.Second)
	w, err := eng.Pause(ctx, testUser, id)
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if w.PausedAt == nil || !w.PausedAt.Equal(clk.now) {
		t.Errorf("pausedAt = %v, want %v", w.PausedAt, clk.now)
	}

	// Pausing again is illegal.
	if _, err := eng.Pause(ctx, testUser, id); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Errorf("double pause error = %v, want invalid transition", err)
	}

	clk.advance(30 * time.Second)
	w, err = eng.Resume(ctx, testUser, id)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if w.TotalPausedMs != 30_000 {
		t.Errorf("totalPausedMs = %d, want 30000", w.TotalPausedMs)
	}
	if w.PausedAt != nil {
		t.Errorf("pausedAt = %v, want nil after resume", w.PausedAt)
	}

	// Resuming a running session is illegal.
	if _, err := eng.Resume(ctx, testUser, id); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Errorf("double resume error = %v, want invalid transition", err)
	}

	clk.advance(10 * time.Second)
	result, err := eng.Finish(ctx, testUser, id, true)
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	final := result.Workout
	if final.TotalPausedMs != 30_000 {
		t.Errorf("final totalPausedMs = %d, want 30000", final.TotalPausedMs)
	}
	if final.CompletedAt == nil || final.CompletedAt.Sub(start) != 50*time.Second {
		t.Errorf("completedAt = %v, want start+50s", final.CompletedAt)
	}
}

func TestFinishFoldsOpenPause(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID

	clk.advance(20 * time.Second)
	if _, err := eng.Pause(ctx, testUser, id); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	clk.advance(15 * time.Second)

	result, err := eng.Finish(ctx, testUser, id, true)
	if err != nil {
		t.Fatalf("Finish() from paused error = %v", err)
	}
	if result.Workout.TotalPausedMs != 15_000 {
		t.Errorf("totalPausedMs = %d, want 15000", result.Workout.TotalPausedMs)
	}
	if result.Workout.PausedAt != nil {
		t.Error("pausedAt should be cleared on finish")
	}
}

func TestCompleteSet(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	sets := detail.Sets

	result, err := eng.CompleteSet(ctx, testUser, id, sets[0].ID, ptrF(100), ptrI(8))
	if err != nil {
		t.Fatalf("CompleteSet() error = %v", err)
	}
	if result.RestSeconds != 180 {
		t.Errorf("restSeconds = %d, want 180 (plan override)", result.RestSeconds)
	}
	if result.NextSetID == nil || *result.NextSetID != sets[1].ID {
		t.Errorf("nextSetID = %v, want %s", result.NextSetID, sets[1].ID)
	}
	if result.Set.CompletedAt == nil || !result.Set.CompletedAt.Equal(clk.now) {
		t.Errorf("completedAt = %v, want %v", result.Set.CompletedAt, clk.now)
	}

	// Re-completing fails and keeps the original stamp.
	firstStamp := *store.sets[sets[0].ID].CompletedAt
	clk.advance(time.Minute)
	_, err = eng.CompleteSet(ctx, testUser, id, sets[0].ID, nil, nil)
	if apperr.KindOf(err) != apperr.KindAlreadyCompleted {
		t.Errorf("double complete error = %v, want already completed", err)
	}
	if !store.sets[sets[0].ID].CompletedAt.Equal(firstStamp) {
		t.Error("completedAt was overwritten by a rejected double-complete")
	}
}

// TestCompleteSetNextBySortOrder verifies the next-set cue follows the global
// sort order, not the set just completed.
func TestCompleteSetNextBySortOrder(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	sets := detail.Sets

	// Complete the 3rd set out of order: the cue still points at set 1.
	result, err := eng.CompleteSet(ctx, testUser, id, sets[2].ID, nil, ptrI(6))
	if err != nil {
		t.Fatalf("CompleteSet() error = %v", err)
	}
	if result.NextSetID == nil || *result.NextSetID != sets[0].ID {
		t.Errorf("nextSetID = %v, want first incomplete set %s", result.NextSetID, sets[0].ID)
	}

	// Complete everything; the last completion has no next set.
	for _, s := range []models.WorkoutSet{sets[0], sets[1], sets[3], sets[4]} {
		result, err = eng.CompleteSet(ctx, testUser, id, s.ID, nil, ptrI(5))
		if err != nil {
			t.Fatalf("CompleteSet(%s) error = %v", s.ID, err)
		}
	}
	if result.NextSetID != nil {
		t.Errorf("nextSetID after final set = %v, want nil", result.NextSetID)
	}
}

func TestUpdateSet(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	setID := detail.Sets[0].ID

	set, err := eng.UpdateSet(ctx, testUser, id, setID, ptrF(102.5), nil)
	if err != nil {
		t.Fatalf("UpdateSet() error = %v", err)
	}
	if set.Weight == nil || *set.Weight != 102.5 {
		t.Errorf("weight = %v, want 102.5", set.Weight)
	}
	if set.CompletedAt != nil {
		t.Error("UpdateSet must not stamp completion")
	}

	// Corrections stay legal after completion, while the session is open.
	if _, err := eng.CompleteSet(ctx, testUser, id, setID, nil, ptrI(8)); err != nil {
		t.Fatalf("CompleteSet() error = %v", err)
	}
	if _, err := eng.UpdateSet(ctx, testUser, id, setID, ptrF(105), nil); err != nil {
		t.Errorf("UpdateSet() after completion error = %v", err)
	}

	// But not after the session is terminal.
	if _, err := eng.Finish(ctx, testUser, id, true); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if _, err := eng.UpdateSet(ctx, testUser, id, setID, ptrF(110), nil); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Errorf("UpdateSet() on finished session error = %v, want invalid transition", err)
	}
}

func TestFinishConfirmationRoundTrip(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	sets := detail.Sets

	// Complete 3 of 5 sets.
	for _, s := range sets[:3] {
		if _, err := eng.CompleteSet(ctx, testUser, id, s.ID, ptrF(100), ptrI(6)); err != nil {
			t.Fatalf("CompleteSet() error = %v", err)
		}
	}

	_, err := eng.Finish(ctx, testUser, id, false)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindConfirmationRequired {
		t.Fatalf("Finish(false) error = %v, want confirmation required", err)
	}
	if len(ae.MissingSetIDs) != 2 {
		t.Fatalf("missing sets = %d, want 2", len(ae.MissingSetIDs))
	}
	missing := map[uuid.UUID]bool{ae.MissingSetIDs[0]: true, ae.MissingSetIDs[1]: true}
	if !missing[sets[3].ID] || !missing[sets[4].ID] {
		t.Errorf("missing set IDs = %v, want the two incomplete sets", ae.MissingSetIDs)
	}

	// Nothing was finalized by the refused attempt.
	if store.workouts[id].Status != models.StatusInProgress {
		t.Errorf("status after refused finish = %s, want IN_PROGRESS", store.workouts[id].Status)
	}

	result, err := eng.Finish(ctx, testUser, id, true)
	if err != nil {
		t.Fatalf("Finish(true) error = %v", err)
	}
	if result.Workout.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", result.Workout.Status)
	}
	for _, sid := range []uuid.UUID{sets[3].ID, sets[4].ID} {
		s := store.sets[sid]
		if s.Reps == nil || *s.Reps != 0 {
			t.Errorf("forced set reps = %v, want 0", s.Reps)
		}
		// Forced sets keep weight and never get a completion stamp; this
		// keeps them out of the snapshot rebuild.
		if s.CompletedAt != nil {
			t.Error("forced set must not be stamped completed")
		}
	}

	// No further transitions from terminal.
	if _, err := eng.Finish(ctx, testUser, id, true); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Errorf("Finish() on completed session error = %v, want invalid transition", err)
	}
	if _, err := eng.Pause(ctx, testUser, id); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Errorf("Pause() on completed session error = %v, want invalid transition", err)
	}
}

// TestSnapshotRebuildRenumbers verifies that only completed sets produce
// snapshots and that they are renumbered gap-free per exercise.
func TestSnapshotRebuildRenumbers(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	squats := plan.Exercises[0].ID
	curls := plan.Exercises[1].ID
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	sets := detail.Sets

	// Complete squat sets 1 and 3 (skipping 2) and curl set 2 only.
	if _, err := eng.CompleteSet(ctx, testUser, id, sets[0].ID, ptrF(100), ptrI(8)); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CompleteSet(ctx, testUser, id, sets[2].ID, ptrF(105), ptrI(5)); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CompleteSet(ctx, testUser, id, sets[4].ID, ptrF(40), ptrI(12)); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Finish(ctx, testUser, id, true); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	bySlot := make(map[uuid.UUID][]models.ProgressSnapshot)
	for _, s := range store.snapshots {
		bySlot[s.PlanExerciseID] = append(bySlot[s.PlanExerciseID], s)
	}

	squatSnaps := bySlot[squats]
	if len(squatSnaps) != 2 {
		t.Fatalf("squat snapshots = %d, want 2", len(squatSnaps))
	}
	// Original set numbers 1 and 3 are renumbered 1 and 2.
	if squatSnaps[0].SetNumber != 1 || *squatSnaps[0].Weight != 100 {
		t.Errorf("squat snapshot 1 = (%d, %v), want (1, 100)", squatSnaps[0].SetNumber, squatSnaps[0].Weight)
	}
	if squatSnaps[1].SetNumber != 2 || *squatSnaps[1].Weight != 105 {
		t.Errorf("squat snapshot 2 = (%d, %v), want (2, 105)", squatSnaps[1].SetNumber, squatSnaps[1].Weight)
	}

	curlSnaps := bySlot[curls]
	if len(curlSnaps) != 1 || curlSnaps[0].SetNumber != 1 {
		t.Errorf("curl snapshots = %v, want one renumbered to slot 1", curlSnaps)
	}
}

func TestFinishDetectsRecords(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	// First session: squats at 100x8.
	detail, _ := eng.Start(ctx, testUser, plan.ID)
	for _, s := range detail.Sets {
		if _, err := eng.CompleteSet(ctx, testUser, detail.Workout.ID, s.ID, ptrF(100), ptrI(8)); err != nil {
			t.Fatal(err)
		}
	}
	first, err := eng.Finish(ctx, testUser, detail.Workout.ID, false)
	if err != nil {
		t.Fatalf("first Finish() error = %v", err)
	}
	if len(first.Records) != 0 {
		t.Errorf("records without a previous session = %d, want 0", len(first.Records))
	}

	// Second session a week later: same weight, more reps.
	clk.advance(7 * 24 * time.Hour)
	detail2, err := eng.Start(ctx, testUser, plan.ID)
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	for _, s := range detail2.Sets {
		if _, err := eng.CompleteSet(ctx, testUser, detail2.Workout.ID, s.ID, ptrF(100), ptrI(10)); err != nil {
			t.Fatal(err)
		}
	}
	second, err := eng.Finish(ctx, testUser, detail2.Workout.ID, false)
	if err != nil {
		t.Fatalf("second Finish() error = %v", err)
	}
	if len(second.Records) != 2 {
		t.Fatalf("records = %d, want 2 (one per exercise)", len(second.Records))
	}
	for _, rec := range second.Records {
		if rec.Type != models.RecordReps {
			t.Errorf("record type = %s, want REPS at equal weight", rec.Type)
		}
		if rec.Delta != 2 {
			t.Errorf("record delta = %v, want 2", rec.Delta)
		}
	}
}

func TestAbandon(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID
	if _, err := eng.CompleteSet(ctx, testUser, id, detail.Sets[0].ID, ptrF(100), ptrI(8)); err != nil {
		t.Fatal(err)
	}

	clk.advance(5 * time.Minute)
	w, err := eng.Abandon(ctx, testUser, id)
	if err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}
	if w.Status != models.StatusAbandoned {
		t.Errorf("status = %s, want ABANDONED", w.Status)
	}
	if w.CompletedAt == nil {
		t.Error("abandon must stamp the end time")
	}
	if len(store.snapshots) != 0 {
		t.Errorf("snapshots after abandon = %d, want 0 (no rewrite)", len(store.snapshots))
	}

	// A new session can start after abandoning.
	if _, err := eng.Start(ctx, testUser, plan.ID); err != nil {
		t.Errorf("Start() after abandon error = %v", err)
	}
}

func TestOwnershipIsForbidden(t *testing.T) {
	store := newFakeStore()
	plan := testPlan(store)
	clk := &fakeClock{now: time.Now().UTC()}
	eng := newTestEngine(store, clk)
	ctx := context.Background()

	detail, _ := eng.Start(ctx, testUser, plan.ID)
	id := detail.Workout.ID

	const intruder = 7
	if _, err := eng.Get(ctx, intruder, id); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("Get() by other user error = %v, want forbidden", err)
	}
	if _, err := eng.Pause(ctx, intruder, id); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("Pause() by other user error = %v, want forbidden", err)
	}
	if _, err := eng.Finish(ctx, intruder, id, true); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("Finish() by other user error = %v, want forbidden", err)
	}
	if _, err := eng.Get(ctx, testUser, uuid.New()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Get() of unknown workout error = %v, want not found", err)
	}
}
