package server

import (
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleWorkoutsTrend(w http.ResponseWriter, r *http.Request) {
	result, err := s.trends.WorkoutsTrend(r.Context(), userIDFromContext(r), r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExerciseTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var exerciseID, planID *uuid.UUID
	if v := q.Get("exercise_id"); v != "" {
		// An unparseable ID falls back to the default selection, same as an
		// exercise without data.
		if id, err := uuid.Parse(v); err == nil {
			exerciseID = &id
		}
	}
	if v := q.Get("plan_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan_id"})
			return
		}
		planID = &id
	}

	result, err := s.trends.ExerciseTrend(r.Context(), userIDFromContext(r),
		q.Get("range"), exerciseID, planID, q.Get("day_type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMuscleGroupTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	muscleGroup := q.Get("muscle_group")
	if muscleGroup == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "muscle_group parameter required"})
		return
	}

	result, err := s.trends.MuscleGroupTrend(r.Context(), userIDFromContext(r), q.Get("range"), muscleGroup)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
