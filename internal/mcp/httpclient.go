package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
)

// HTTPClient implements DataSource by calling the TrackMate REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// workouts live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// is sent as X-API-Key when non-empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the error body returned by the REST API.
type apiError struct {
	Error       string `json:"error"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body []byte, wantStatus int) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Title != "" {
			return nil, fmt.Errorf("httpclient: %s: %s: %s", path, apiErr.Title, apiErr.Description)
		}
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// ImportWorkout previews text on the server, then commits the candidate.
func (c *HTTPClient) ImportWorkout(ctx context.Context, text string) (models.Workout, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/import/preview", "text/plain; charset=utf-8", []byte(text), http.StatusOK)
	if err != nil {
		return models.Workout{}, err
	}
	var preview struct {
		Candidate ingest.Candidate `json:"candidate"`
	}
	if err := json.Unmarshal(body, &preview); err != nil {
		return models.Workout{}, fmt.Errorf("httpclient: decode preview: %w", err)
	}

	payload, err := json.Marshal(preview.Candidate)
	if err != nil {
		return models.Workout{}, fmt.Errorf("httpclient: encode candidate: %w", err)
	}
	body, err = c.do(ctx, http.MethodPost, "/api/v1/import", "application/json", payload, http.StatusCreated)
	if err != nil {
		return models.Workout{}, err
	}
	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return models.Workout{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return w, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context) ([]models.Workout, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/templates", "", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var templates []models.Workout
	if err := json.Unmarshal(body, &templates); err != nil {
		return nil, fmt.Errorf("httpclient: decode templates: %w", err)
	}
	return templates, nil
}

func (c *HTTPClient) ListHistory(ctx context.Context) ([]models.SessionSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/history", "", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var history []models.SessionSummary
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return history, nil
}
