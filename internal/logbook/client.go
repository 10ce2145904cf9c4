package logbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client sends queued set completions to the LiftLog server.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a sync client for the given server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SyncResult reports how the server applied a batch. Skipped entries were
// already completed server-side; they still count as synced locally.
type SyncResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// SendBatch POSTs pending entries to the sync endpoint. Retries up to 3
// times with exponential backoff on failure.
func (c *Client) SendBatch(entries []Entry) (*SyncResult, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshaling batch: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/sync/sets", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating sync request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var result SyncResult
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding sync result: %w", err)
			}
			return &result, nil
		}
		lastErr = fmt.Errorf("sync failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// Sync drains the queue: sends all pending entries and marks them synced on
// success.
func Sync(q *Queue, c *Client) (*SyncResult, error) {
	pending, err := q.Pending()
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &SyncResult{}, nil
	}

	result, err := c.SendBatch(pending)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.ID)
	}
	if err := q.MarkSynced(ids); err != nil {
		return result, fmt.Errorf("batch accepted but not marked locally: %w", err)
	}
	return result, nil
}
