// Package backend wraps the clinic backend REST API for ChanjoBot.
//
// The backend owns guardian, baby and appointment storage plus all schedule
// generation; this client only shuttles validated records to and from it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// Constants for the backend client configuration.
const (
	// DefaultRequestTimeout bounds each backend call.
	DefaultRequestTimeout = 15 * time.Second
	// MaxErrorBodyLength bounds the backend error excerpt surfaced to users.
	MaxErrorBodyLength = 200
)

// APIError is a non-2xx response from the backend. Body holds an excerpt of
// the response body truncated to MaxErrorBodyLength.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Opts holds configuration options for the backend client.
type Opts struct {
	BaseURL    string
	APIToken   string
	HTTPClient *http.Client
}

// Option defines a configuration option for the backend client.
type Option func(*Opts)

// WithBaseURL sets the backend base URL.
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithAPIToken sets the bearer token sent on every request.
func WithAPIToken(token string) Option {
	return func(o *Opts) { o.APIToken = token }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client is an HTTP client for the clinic backend API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new backend client, applying any provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Backend NewClient options set", "BaseURL_set", cfg.BaseURL != "", "APIToken_set", cfg.APIToken != "")

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		httpClient: cfg.HTTPClient,
	}, nil
}

// doJSON issues a request with an optional JSON body and decodes the response
// into out when out is non-nil. Non-2xx responses become *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build backend request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Backend request failed", "error", err, "method", method, "path", path)
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt := string(respBody)
		if len(excerpt) > MaxErrorBodyLength {
			excerpt = excerpt[:MaxErrorBodyLength]
		}
		slog.Error("Backend non-2xx response", "status", resp.StatusCode, "method", method, "path", path, "body", excerpt)
		return &APIError{StatusCode: resp.StatusCode, Body: excerpt}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			slog.Error("Backend response decode failed", "error", err, "method", method, "path", path)
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
	}

	slog.Debug("Backend request succeeded", "method", method, "path", path, "status", resp.StatusCode)
	return nil
}

// RegisterGuardian creates a guardian record.
func (c *Client) RegisterGuardian(ctx context.Context, g models.Guardian) error {
	return c.doJSON(ctx, http.MethodPost, "/guardians", g, nil)
}

// FindGuardianByNationalID resolves a guardian by national ID. Returns
// (nil, nil) when no guardian matches.
func (c *Client) FindGuardianByNationalID(ctx context.Context, nationalID string) (*models.Guardian, error) {
	var g models.Guardian
	err := c.doJSON(ctx, http.MethodGet, "/guardians/national-id/"+url.PathEscape(nationalID), nil, &g)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// RegisterBaby creates a baby record.
func (c *Client) RegisterBaby(ctx context.Context, b models.Baby) error {
	return c.doJSON(ctx, http.MethodPost, "/babies", b, nil)
}

// CreateAppointment creates an appointment record.
func (c *Client) CreateAppointment(ctx context.Context, a models.Appointment) error {
	return c.doJSON(ctx, http.MethodPost, "/appointments", a, nil)
}

// ListAppointments returns all appointments for a baby.
func (c *Client) ListAppointments(ctx context.Context, babyID int64) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/appointments?baby_id=%d", babyID), nil, &appts)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// UpdateAppointment modifies the date and notes of an appointment.
func (c *Client) UpdateAppointment(ctx context.Context, id int64, u models.AppointmentUpdate) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d", id), u, nil)
}

// DeleteAppointment cancels an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), nil, nil)
}
