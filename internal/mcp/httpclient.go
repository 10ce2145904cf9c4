package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/trends"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}

func (c *HTTPClient) WorkoutsTrend(ctx context.Context, _ int, rangeStr string) (*trends.WorkoutTrendResult, error) {
	params := url.Values{}
	if rangeStr != "" {
		params.Set("range", rangeStr)
	}

	body, _, err := c.get(ctx, "/api/v1/trends/workouts", params)
	if err != nil {
		return nil, err
	}

	var result trends.WorkoutTrendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts trend: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) ExerciseTrend(ctx context.Context, _ int, rangeStr string, exerciseID, planID *uuid.UUID, dayType string) (*trends.ExerciseTrendResult, error) {
	params := url.Values{}
	if rangeStr != "" {
		params.Set("range", rangeStr)
	}
	if exerciseID != nil {
		params.Set("exercise_id", exerciseID.String())
	}
	if planID != nil {
		params.Set("plan_id", planID.String())
	}
	if dayType != "" {
		params.Set("day_type", dayType)
	}

	body, _, err := c.get(ctx, "/api/v1/trends/exercise", params)
	if err != nil {
		return nil, err
	}

	var result trends.ExerciseTrendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise trend: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) MuscleGroupTrend(ctx context.Context, _ int, rangeStr, muscleGroup string) (*trends.MuscleGroupTrendResult, error) {
	params := url.Values{}
	params.Set("muscle_group", muscleGroup)
	if rangeStr != "" {
		params.Set("range", rangeStr)
	}

	body, _, err := c.get(ctx, "/api/v1/trends/muscle-group", params)
	if err != nil {
		return nil, err
	}

	var result trends.MuscleGroupTrendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode muscle-group trend: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) RecentWorkouts(ctx context.Context, _ int, limit int) ([]models.Workout, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, _, err := c.get(ctx, "/api/v1/sessions/recent", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode recent workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) ActiveSession(ctx context.Context, _ int) (*session.Detail, error) {
	body, status, err := c.get(ctx, "/api/v1/sessions/active", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var detail session.Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode active session: %w", err)
	}
	return &detail, nil
}
