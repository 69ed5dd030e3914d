package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient is a DataSource backed by a remote repnotes server's REST API.
// The server identifies the user from the connection, so userID arguments
// are ignored.
type HTTPClient struct {
	base string
	hc   *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON fetches path and decodes the JSON body into a T.
// A 404 is reported as storage.ErrWorkoutNotFound.
func getJSON[T any](ctx context.Context, c *HTTPClient, path string, query url.Values) (*T, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrWorkoutNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	v := new(T)
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _ int, start, end time.Time) ([]models.WorkoutSummary, error) {
	q := url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}
	list, err := getJSON[[]models.WorkoutSummary](ctx, c, "/api/v1/workouts", q)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID, _ int) (*models.Workout, error) {
	return getJSON[models.Workout](ctx, c, "/api/v1/workouts/"+id.String(), nil)
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	return getJSON[storage.DataStats](ctx, c, "/api/v1/stats", nil)
}
