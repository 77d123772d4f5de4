package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hctools/hc-bulk/internal/metrics"
	"github.com/hctools/hc-bulk/internal/models"
)

// APIError describes a non-2xx response from the management API. The
// status code determines how callers treat it: 429 is transient and
// retried, 401/403 are auth failures, everything else is a generic API
// error.
type APIError struct {
	StatusCode int
	Op         string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: api returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: api returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsRateLimited reports whether err is a rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsAuthError reports whether err is an authentication or authorization
// failure.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// HealthchecksClient talks to a Healthchecks-compatible management API.
type HealthchecksClient struct {
	baseURL    string
	apiKey     string
	pingKey    string
	httpClient *http.Client
}

// NewHealthchecksClient constructs a client for the given API endpoint.
func NewHealthchecksClient(baseURL, apiKey, pingKey string, timeout time.Duration) *HealthchecksClient {
	return &HealthchecksClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		pingKey: pingKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListChecks fetches the check collection, optionally narrowed by tags.
// Multiple tags are ANDed by the server.
func (c *HealthchecksClient) ListChecks(ctx context.Context, tags []string) ([]models.Check, error) {
	if c == nil {
		return nil, fmt.Errorf("healthchecks client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("healthchecks base URL not configured")
	}

	endpoint := c.resolvePath("/checks/")
	if len(tags) > 0 {
		query := url.Values{}
		for _, tag := range tags {
			query.Add("tag", tag)
		}
		endpoint += "?" + query.Encode()
	}

	var response struct {
		Checks []models.Check `json:"checks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "list checks", endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response.Checks, nil
}

// UpdateCheck applies the non-nil fields of upd to the identified check
// and returns the updated check.
func (c *HealthchecksClient) UpdateCheck(ctx context.Context, uuid string, upd models.CheckUpdate) (*models.Check, error) {
	if c == nil {
		return nil, fmt.Errorf("healthchecks client not initialised")
	}
	if uuid == "" {
		return nil, fmt.Errorf("update check: empty uuid")
	}

	var updated models.Check
	endpoint := c.resolvePath("/checks/" + uuid)
	if err := c.doJSON(ctx, http.MethodPost, "update check", endpoint, upd, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PauseCheck pauses the identified check and returns its new state.
func (c *HealthchecksClient) PauseCheck(ctx context.Context, uuid string) (*models.Check, error) {
	if c == nil {
		return nil, fmt.Errorf("healthchecks client not initialised")
	}
	if uuid == "" {
		return nil, fmt.Errorf("pause check: empty uuid")
	}

	var paused models.Check
	endpoint := c.resolvePath("/checks/" + uuid + "/pause")
	if err := c.doJSON(ctx, http.MethodPost, "pause check", endpoint, struct{}{}, &paused); err != nil {
		return nil, err
	}
	return &paused, nil
}

func (c *HealthchecksClient) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	trailing := strings.HasSuffix(cleaned, "/")
	u.Path = path.Join(u.Path, cleaned)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

func (c *HealthchecksClient) doJSON(ctx context.Context, method, op, endpoint string, payload any, out any) error {
	if endpoint == "" {
		return fmt.Errorf("%s: empty endpoint", op)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal payload: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(op, metrics.OutcomeError)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveRequest(op, metrics.OutcomeError)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Op: op, Body: strings.TrimSpace(string(snippet))}
	}
	metrics.ObserveRequest(op, metrics.OutcomeSuccess)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
