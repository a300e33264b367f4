// Package planapi is a REST client for the plan backend served by
// myplan-server. It lets a Session run on a different machine than the
// database, reached over Tailscale.
package planapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
)

// Compile-time check: HTTPClient satisfies myplan.Backend.
var _ myplan.Backend = (*HTTPClient)(nil)

// HTTPClient implements myplan.Backend by calling the myplan REST API. The
// server resolves the user from the connection, so userID arguments are
// ignored.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent as X-API-Key on write requests when set.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("httpclient: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.Path, e.Code, e.Body)
}

func (c *HTTPClient) GetPlan(ctx context.Context, _ int) (*models.Plan, error) {
	var plan models.Plan
	if err := c.get(ctx, "/api/v1/plan", &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) GetProgress(ctx context.Context, _ int) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	if err := c.get(ctx, "/api/v1/progress", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*models.WorkoutDetail, error) {
	var w models.WorkoutDetail
	if err := c.get(ctx, "/api/v1/workouts/"+url.PathEscape(id), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) GetPlanType(ctx context.Context, planID string) (models.PlanType, error) {
	var resp models.PlanTypeResponse
	if err := c.get(ctx, "/api/v1/plans/"+url.PathEscape(planID)+"/type", &resp); err != nil {
		return "", err
	}
	return resp.PlanType, nil
}

func (c *HTTPClient) ChangeDate(ctx context.Context, _ int, day int) error {
	return c.post(ctx, "/api/v1/plan/date", models.ChangeDateRequest{Day: day}, nil)
}

func (c *HTTPClient) RateWorkout(ctx context.Context, _ int, req models.RateRequest) (models.RateAction, error) {
	var resp models.RateResponse
	if err := c.post(ctx, "/api/v1/workouts/rate", req, &resp); err != nil {
		return "", err
	}
	return resp.Action, nil
}

func (c *HTTPClient) SaveProgress(ctx context.Context, _ int, req models.SaveProgressRequest) error {
	return c.post(ctx, "/api/v1/progress", req, nil)
}

func (c *HTTPClient) ChangeDifficulty(ctx context.Context, _ int, action models.RateAction) error {
	return c.post(ctx, "/api/v1/plan/difficulty", models.DifficultyRequest{Action: action}, nil)
}

// GetMe returns the identity the server resolved for this client.
func (c *HTTPClient) GetMe(ctx context.Context) (Me, error) {
	var me Me
	err := c.get(ctx, "/api/v1/me", &me)
	return me, err
}

// Me is the body of /api/v1/me.
type Me struct {
	UserID        int    `json:"user_id"`
	Login         string `json:"login"`
	DisplayName   string `json:"display_name"`
	QuizCompleted bool   `json:"quiz_completed"`
}
