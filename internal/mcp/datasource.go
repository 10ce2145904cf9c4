package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/trends"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Local (in-process
// engines) and HTTPClient (remote via REST API) both satisfy this interface.
type DataSource interface {
	WorkoutsTrend(ctx context.Context, userID int, rangeStr string) (*trends.WorkoutTrendResult, error)
	ExerciseTrend(ctx context.Context, userID int, rangeStr string, exerciseID, planID *uuid.UUID, dayType string) (*trends.ExerciseTrendResult, error)
	MuscleGroupTrend(ctx context.Context, userID int, rangeStr, muscleGroup string) (*trends.MuscleGroupTrendResult, error)
	RecentWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error)
	ActiveSession(ctx context.Context, userID int) (*session.Detail, error)
}

// Local serves MCP tools directly from the in-process engines.
type Local struct {
	Sessions *session.Engine
	Trends   *trends.Engine
	DB       *storage.DB
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) WorkoutsTrend(ctx context.Context, userID int, rangeStr string) (*trends.WorkoutTrendResult, error) {
	return l.Trends.WorkoutsTrend(ctx, userID, rangeStr)
}

func (l *Local) ExerciseTrend(ctx context.Context, userID int, rangeStr string, exerciseID, planID *uuid.UUID, dayType string) (*trends.ExerciseTrendResult, error) {
	return l.Trends.ExerciseTrend(ctx, userID, rangeStr, exerciseID, planID, dayType)
}

func (l *Local) MuscleGroupTrend(ctx context.Context, userID int, rangeStr, muscleGroup string) (*trends.MuscleGroupTrendResult, error) {
	return l.Trends.MuscleGroupTrend(ctx, userID, rangeStr, muscleGroup)
}

func (l *Local) RecentWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	return l.DB.RecentWorkouts(ctx, userID, limit)
}

func (l *Local) ActiveSession(ctx context.Context, userID int) (*session.Detail, error) {
	return l.Sessions.Active(ctx, userID)
}
