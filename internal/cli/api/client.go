// Package api implements the HTTP client for the GenLink JSON API.
//
// The API itself lives outside this repository; everything here treats it as
// an opaque collaborator reachable over HTTPS. Tokens are plain bearer
// credentials with no structure the client inspects.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// defaultTimeout bounds every request so a hung network resolves as an error
// instead of blocking a bootstrap forever
const defaultTimeout = 15 * time.Second

// Client represents an HTTP client for the GenLink API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new API client for the given base URL
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a JSON request and decodes the response into out when non-nil.
// token may be empty for public endpoints.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("API request failed")
		return statusToError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// statusToError maps failure statuses onto the package's error taxonomy
func statusToError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, status)
	case http.StatusNotFound:
		return fmt.Errorf("%w (status %d)", ErrNotFound, status)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, strings.TrimSpace(string(body)))
	case http.StatusUnprocessableEntity:
		if verr := parseValidationError(body); verr != nil {
			return verr
		}
	}
	return &StatusError{StatusCode: status, Body: strings.TrimSpace(string(body))}
}

// Login authenticates the volunteer and returns a bearer token.
// A rejection by the server surfaces as ErrInvalidCredentials so the login
// form can show an inline message without leaking server details; transport
// failures pass through unchanged so the caller can tell "wrong password"
// from "server unreachable".
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/accounts/login", "",
		LoginRequest{Email: email, Password: password}, &resp, http.StatusOK)
	if err != nil {
		if isRejection(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return &resp, nil
}

// isRejection reports whether the server answered and said no, as opposed to
// the request never completing
func isRejection(err error) bool {
	var statusErr *StatusError
	var verr *ValidationError
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.As(err, &verr) ||
		errors.As(err, &statusErr)
}

// Register creates a new volunteer account. Field-level server validation
// failures come back as *ValidationError.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodPost, "/api/v1/accounts/register", "", req, &account, http.StatusCreated); err != nil {
		return nil, err
	}
	return &account, nil
}

// Me fetches the profile belonging to the given token
func (c *Client) Me(ctx context.Context, token string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/me", token, nil, &account, http.StatusOK); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateMe applies a partial profile update and returns the fresh profile
func (c *Client) UpdateMe(ctx context.Context, token string, req AccountUpdateRequest) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodPut, "/api/v1/accounts/me", token, req, &account, http.StatusOK); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteMe removes the authenticated account
func (c *Client) DeleteMe(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/accounts/me", token, nil, nil, http.StatusNoContent)
}

// ActiveVolunteers lists volunteers that are currently available
func (c *Client) ActiveVolunteers(ctx context.Context) ([]ActiveVolunteerProfile, error) {
	var volunteers []ActiveVolunteerProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/volunteers/active", "", nil, &volunteers, http.StatusOK); err != nil {
		return nil, err
	}
	return volunteers, nil
}

// CreateReport files a new help request on behalf of a senior
func (c *Client) CreateReport(ctx context.Context, req ReportCreateRequest) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/v1/reports/", "", req, &report, http.StatusCreated); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns open reports matching the filter
func (c *Client) ListReports(ctx context.Context, token string, filter ReportFilter) ([]Report, error) {
	params := url.Values{}
	if filter.City != "" {
		params.Set("city", filter.City)
	}
	if filter.ReportTypeID > 0 {
		params.Set("report_type_id", strconv.Itoa(filter.ReportTypeID))
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Skip > 0 {
		params.Set("skip", strconv.Itoa(filter.Skip))
	}

	path := "/api/v1/reports/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var reports []Report
	if err := c.do(ctx, http.MethodGet, path, token, nil, &reports, http.StatusOK); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport fetches a single report by ID
func (c *Client) GetReport(ctx context.Context, token string, id int) (*Report, error) {
	var report Report
	path := fmt.Sprintf("/api/v1/reports/%d", id)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// AcceptReport assigns the report to the authenticated volunteer.
// Returns ErrConflict when the volunteer already has an active report.
func (c *Client) AcceptReport(ctx context.Context, token string, id int) (*Report, error) {
	var report Report
	path := fmt.Sprintf("/api/v1/reports/%d/accept", id)
	if err := c.do(ctx, http.MethodPost, path, token, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// CancelActiveReport returns the volunteer's active report to the pool
func (c *Client) CancelActiveReport(ctx context.Context, token string) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/v1/reports/active/cancel", token, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// CompleteActiveReport marks the volunteer's active report as resolved
func (c *Client) CompleteActiveReport(ctx context.Context, token string) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/v1/reports/active/complete", token, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// MyAcceptedReport fetches the volunteer's current assignment, ErrNotFound when none
func (c *Client) MyAcceptedReport(ctx context.Context, token string) (*Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/my/accepted", token, nil, &report, http.StatusOK); err != nil {
		return nil, err
	}
	return &report, nil
}

// MyCompletedReports lists reports the volunteer has resolved
func (c *Client) MyCompletedReports(ctx context.Context, token string) ([]Report, error) {
	var reports []Report
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/my/completed", token, nil, &reports, http.StatusOK); err != nil {
		return nil, err
	}
	return reports, nil
}

// ReportStats fetches the public report statistics summary
func (c *Client) ReportStats(ctx context.Context) (*ReportStats, error) {
	var stats ReportStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/stats/summary", "", nil, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReportTypes lists the report categories used by request forms
func (c *Client) ReportTypes(ctx context.Context) ([]ReportType, error) {
	var types []ReportType
	if err := c.do(ctx, http.MethodGet, "/api/v1/types/report-types", "", nil, &types, http.StatusOK); err != nil {
		return nil, err
	}
	return types, nil
}

// AvailabilityTypes lists the availability categories used at registration
func (c *Client) AvailabilityTypes(ctx context.Context) ([]AvailabilityType, error) {
	var types []AvailabilityType
	if err := c.do(ctx, http.MethodGet, "/api/v1/types/availability-types", "", nil, &types, http.StatusOK); err != nil {
		return nil, err
	}
	return types, nil
}
