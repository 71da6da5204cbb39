package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkraus12/courtside/internal/models"
)

// GetState fetches the current server snapshot. Fields missing from the
// JSON decode to their zero values and are treated as absent.
func (c *Client) GetState(ctx context.Context) (models.Scoreboard, error) {
	var state models.Scoreboard
	if err := c.getJSON(ctx, "/api/state", &state); err != nil {
		return models.Scoreboard{}, err
	}
	return state, nil
}

// UpdateState pushes the full snapshot. The server treats this as an
// idempotent upsert; no response body is relied upon.
func (c *Client) UpdateState(ctx context.Context, state models.Scoreboard) error {
	return c.postJSON(ctx, "/api/update", state)
}

// Stream follows the server's SSE feed, invoking fn for every snapshot
// pushed. It returns when ctx is cancelled or the connection drops.
func (c *Client) Stream(ctx context.Context, fn func(models.Scoreboard)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// No overall timeout on a long-lived stream; ctx governs its lifetime.
	client := &http.Client{Transport: c.client.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var state models.Scoreboard
		if err := json.Unmarshal([]byte(payload), &state); err != nil {
			// A malformed event is skipped, not fatal to the stream.
			continue
		}
		fn(state)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return ctx.Err()
}
