package team5api

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

	"github.com/google/uuid"

	"travel-panel/internal/domain"
	"travel-panel/internal/infra/metrics"
)

// Client talks to the team5 recommendation backend.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	sessionCookie string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithSessionCookie attaches the session credential to every request.
func WithSessionCookie(cookie string) Option {
	return func(c *Client) {
		c.sessionCookie = cookie
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "http"
	}
	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Do performs a resolved read request. Bodies that fail JSON decoding are
// returned as raw text, matching the panel's loose payload contract.
func (c *Client) Do(ctx context.Context, desc domain.RequestDescriptor) (domain.CallResult, error) {
	method := desc.Method
	if method == "" {
		method = http.MethodGet
	}
	operation := desc.Operation
	if operation == "" {
		operation = "action"
	}
	start := time.Now()
	resp, err := c.send(ctx, method, desc.Endpoint, nil)
	metrics.ObserveBackendRequest(operation, start, err)
	if err != nil {
		return domain.CallResult{Endpoint: desc.Endpoint}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CallResult{Endpoint: desc.Endpoint}, fmt.Errorf("read response: %w", err)
	}
	var payload any
	if jsonErr := json.Unmarshal(raw, &payload); jsonErr != nil {
		payload = string(raw)
	}
	return domain.CallResult{Status: resp.StatusCode, Endpoint: desc.Endpoint, Payload: payload}, nil
}

// CurrentUser resolves the authenticated user; non-OK means anonymous.
func (c *Client) CurrentUser(ctx context.Context) (*domain.AuthUser, error) {
	start := time.Now()
	resp, err := c.send(ctx, http.MethodGet, "/api/auth/me/", nil)
	metrics.ObserveBackendRequest("current_user", start, err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	var body struct {
		User *domain.AuthUser `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return body.User, nil
}

func (c *Client) Users(ctx context.Context) ([]domain.PanelUser, error) {
	var body struct {
		Items []domain.PanelUser `json:"items"`
	}
	if err := c.getJSON(ctx, "users", "/team5/api/users/", &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func (c *Client) Cities(ctx context.Context) ([]domain.City, error) {
	var cities []domain.City
	if err := c.getJSON(ctx, "cities", "/team5/api/cities/", &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *Client) PlacesByCity(ctx context.Context, cityID string) ([]domain.Place, error) {
	var places []domain.Place
	endpoint := fmt.Sprintf("/team5/api/places/city/%s/", url.PathEscape(cityID))
	if err := c.getJSON(ctx, "places", endpoint, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// SubmitFeedback posts the feedback payload. Non-OK responses surface the
// server detail through APIError.
func (c *Client) SubmitFeedback(ctx context.Context, submission domain.FeedbackSubmission) error {
	start := time.Now()
	resp, err := c.send(ctx, http.MethodPost, "/team5/api/recommendations/feedback/", submission)
	metrics.ObserveBackendRequest("feedback", start, err)
	if err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &body)
		return &domain.APIError{Status: resp.StatusCode, Detail: body.Detail}
	}
	return nil
}

func (c *Client) Comments(ctx context.Context, mediaID string) ([]domain.Comment, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("/team5/api/media/%s/comments/", url.PathEscape(mediaID))
	resp, err := c.send(ctx, http.MethodGet, endpoint, nil)
	metrics.ObserveBackendRequest("comments", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read comments: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &body)
		return nil, &domain.APIError{Status: resp.StatusCode, Detail: body.Detail}
	}
	var body struct {
		Items []domain.Comment `json:"items"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return body.Items, nil
}

// Train starts a model training run. A body that is not JSON is fatal to the
// call and reported with a truncated excerpt.
func (c *Client) Train(ctx context.Context) (domain.TrainResult, error) {
	start := time.Now()
	resp, err := c.send(ctx, http.MethodPost, "/team5/api/train", nil)
	metrics.ObserveBackendRequest("train", start, err)
	if err != nil {
		return domain.TrainResult{}, fmt.Errorf("train: %w", err)
	}
	defer resp.Body.Close()
	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return domain.TrainResult{}, fmt.Errorf("read train response: %w", readErr)
	}
	var result domain.TrainResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.TrainResult{}, fmt.Errorf("non-JSON response: %s", excerpt(string(raw), 140))
	}
	return result, nil
}

func (c *Client) ModelStatus(ctx context.Context) (domain.MLStatus, error) {
	var status domain.MLStatus
	if err := c.getJSON(ctx, "ml_status", "/team5/api/ml/status", &status); err != nil {
		return domain.MLStatus{}, err
	}
	return status, nil
}

func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	start := time.Now()
	resp, err := c.send(ctx, http.MethodGet, endpoint, nil)
	metrics.ObserveBackendRequest(operation, start, err)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &body)
		return &domain.APIError{Status: resp.StatusCode, Detail: body.Detail}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	resolved, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, resolved, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("team5 api request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) resolve(endpoint string) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	resolved := *c.baseURL
	basePath := strings.TrimSuffix(c.baseURL.Path, "/")
	resolved.Path = basePath + rel.Path
	resolved.RawQuery = rel.RawQuery
	return resolved.String(), nil
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ domain.Backend = (*Client)(nil)
