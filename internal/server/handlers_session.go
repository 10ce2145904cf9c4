package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID uuid.UUID `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.PlanID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan_id is required"})
		return
	}

	detail, err := s.sessions.Start(r.Context(), userIDFromContext(r), req.PlanID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	detail, err := s.sessions.Active(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if detail == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.sessions.Get(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRecentWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	workouts, err := s.db.RecentWorkouts(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	workout, err := s.sessions.Pause(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	workout, err := s.sessions.Resume(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	workout, err := s.sessions.Abandon(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ForceComplete bool `json:"force_complete"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	result, err := s.sessions.Finish(r.Context(), userIDFromContext(r), id, req.ForceComplete)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	var req struct {
		Weight *float64 `json:"weight"`
		Reps   *int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	set, err := s.sessions.UpdateSet(r.Context(), userIDFromContext(r), workoutID, setID, req.Weight, req.Reps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	setID, ok := parseUUIDParam(w, r, "setID")
	if !ok {
		return
	}
	var req struct {
		Weight *float64 `json:"weight"`
		Reps   *int     `json:"reps"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	result, err := s.sessions.CompleteSet(r.Context(), userIDFromContext(r), workoutID, setID, req.Weight, req.Reps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSyncSets replays set completions queued offline by the logbook CLI.
// Already-completed sets count as synced so replays stay idempotent.
func (s *Server) handleSyncSets(w http.ResponseWriter, r *http.Request) {
	var req []struct {
		WorkoutID uuid.UUID `json:"workout_id"`
		SetID     uuid.UUID `json:"set_id"`
		Weight    *float64  `json:"weight"`
		Reps      *int      `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	uid := userIDFromContext(r)
	applied, skipped := 0, 0
	for _, entry := range req {
		_, err := s.sessions.CompleteSet(r.Context(), uid, entry.WorkoutID, entry.SetID, entry.Weight, entry.Reps)
		switch {
		case err == nil:
			applied++
		case apperr.KindOf(err) == apperr.KindAlreadyCompleted:
			skipped++
		default:
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": applied, "skipped": skipped})
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps the engine error taxonomy onto HTTP statuses. Unknown
// errors are logged and reported as opaque 500s.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict, apperr.KindInvalidTransition,
		apperr.KindAlreadyCompleted, apperr.KindConfirmationRequired:
		status = http.StatusConflict
	}

	body := map[string]any{"error": ae.Error(), "code": ae.Kind.Code()}
	if len(ae.MissingSetIDs) > 0 {
		body["missing_set_ids"] = ae.MissingSetIDs
	}
	writeJSON(w, status, body)
}
