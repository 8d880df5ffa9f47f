package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
)

// ErrRejected marks a workout the server refused to parse. Retrying the
// same text will not help.
var ErrRejected = errors.New("workout rejected by server")

// Client sends workout text to the TrackMate server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the TrackMate server. apiKey is
// sent as X-API-Key when non-empty.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendWorkout has the server parse text, then saves the resulting candidate
// as a template without starting a session.
func (c *Client) SendWorkout(ctx context.Context, text string) (models.Workout, error) {
	body, err := c.post(ctx, "/api/v1/import/preview", "text/plain; charset=utf-8", []byte(text), http.StatusOK)
	if err != nil {
		return models.Workout{}, err
	}
	var preview struct {
		Candidate ingest.Candidate `json:"candidate"`
	}
	if err := json.Unmarshal(body, &preview); err != nil {
		return models.Workout{}, fmt.Errorf("decoding preview: %w", err)
	}

	data, err := json.Marshal(preview.Candidate)
	if err != nil {
		return models.Workout{}, fmt.Errorf("marshaling candidate: %w", err)
	}
	body, err = c.post(ctx, "/api/v1/import?session=false", "application/json", data, http.StatusCreated)
	if err != nil {
		return models.Workout{}, err
	}
	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return models.Workout{}, fmt.Errorf("decoding workout: %w", err)
	}
	return w, nil
}

// post sends data, retrying up to 3 times with exponential backoff on
// transport errors and 5xx responses. A 400 is returned at once as ErrRejected.
func (c *Client) post(ctx context.Context, path, contentType string, data []byte, want int) ([]byte, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(1<<uint(attempt-1))):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == want:
			return body, nil
		case resp.StatusCode == http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrRejected, rejectionReason(body))
		case resp.StatusCode < 500:
			return nil, fmt.Errorf("%s failed (status %d): %s", path, resp.StatusCode, body)
		}
		lastErr = fmt.Errorf("%s failed (status %d): %s", path, resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// rejectionReason extracts the user-facing text from an API error body.
func rejectionReason(body []byte) string {
	var e struct {
		Error       string `json:"error"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return strings.TrimSpace(string(body))
	}
	if e.Title != "" {
		return e.Title + ": " + e.Description
	}
	return e.Error
}
