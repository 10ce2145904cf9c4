package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseOptionalUUID parses an optional UUID parameter, distinguishing absent
// ("") from malformed.
func parseOptionalUUID(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// --- Tool definitions ---

var toolGetWorkoutsTrend = mcp.NewTool("get_workouts_trend",
	mcp.WithDescription("Weekly completed-workout counts over a training window. Returns one point per week (Monday-start, UTC), including zero weeks."),
	mcp.WithString("range", mcp.Description("Window length. Defaults to '12w'."), mcp.Enum("8w", "12w", "24w")),
)

var toolGetExerciseTrend = mcp.NewTool("get_exercise_trend",
	mcp.WithDescription("Per-workout top-set estimated 1RM curve for one exercise, plus the list of exercises with data in the window. Without exercise_id the first exercise alphabetically is selected."),
	mcp.WithString("range", mcp.Description("Window length. Defaults to '12w'."), mcp.Enum("8w", "12w", "24w")),
	mcp.WithString("exercise_id", mcp.Description("Exercise UUID. Falls back to the default selection when the exercise has no data in the window.")),
	mcp.WithString("plan_id", mcp.Description("Restrict to sets performed under one training plan (UUID).")),
	mcp.WithString("day_type", mcp.Description("Restrict to plans of one day type (e.g. 'PUSH', 'PULL', 'LEGS').")),
)

var toolGetMuscleGroupTrend = mcp.NewTool("get_muscle_group_trend",
	mcp.WithDescription("Weekly progress index for a muscle group. Each exercise is normalized against its own early baseline (index 100) and weighted by category; weeks without training are null."),
	mcp.WithString("muscle_group", mcp.Required(), mcp.Description("Muscle group tag (e.g. 'CHEST', 'BACK', 'QUADS')")),
	mcp.WithString("range", mcp.Description("Window length. Defaults to '12w'."), mcp.Enum("8w", "12w", "24w")),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("Most recent workout sessions, newest first, including abandoned ones."),
	mcp.WithNumber("limit", mcp.Description("Number of sessions to return (1-100). Defaults to 20.")),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("The currently running or paused workout session with all its sets, or {\"active\": false} when none exists."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutsTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	trend, err := h.ds.WorkoutsTrend(ctx, uid, req.GetString("range", ""))
	if err != nil {
		h.log.Error("mcp get_workouts_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trend)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, ok := parseOptionalUUID(req.GetString("exercise_id", ""))
	if !ok {
		return mcp.NewToolResultError("invalid exercise_id"), nil
	}
	planID, ok := parseOptionalUUID(req.GetString("plan_id", ""))
	if !ok {
		return mcp.NewToolResultError("invalid plan_id"), nil
	}

	uid := UserIDFromContext(ctx)
	trend, err := h.ds.ExerciseTrend(ctx, uid, req.GetString("range", ""), exerciseID, planID, req.GetString("day_type", ""))
	if err != nil {
		h.log.Error("mcp get_exercise_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trend)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleGroupTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscleGroup, err := req.RequireString("muscle_group")
	if err != nil {
		return mcp.NewToolResultError("muscle_group parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	trend, err := h.ds.MuscleGroupTrend(ctx, uid, req.GetString("range", ""), muscleGroup)
	if err != nil {
		h.log.Error("mcp get_muscle_group_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trend)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.RecentWorkouts(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActiveSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	detail, err := h.ds.ActiveSession(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var payload any = map[string]any{"active": false}
	if detail != nil {
		payload = detail
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
