// Package whatsapp wraps the WhatsApp Cloud API (Graph API) for ChanjoBot.
//
// It provides an authenticated HTTP client for sending text messages to CHWs.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// Constants for the Cloud API client configuration.
const (
	// DefaultGraphBaseURL is the Meta Graph API endpoint prefix.
	DefaultGraphBaseURL = "https://graph.facebook.com/v19.0"
	// DefaultRequestTimeout bounds outbound message sends.
	DefaultRequestTimeout = 10 * time.Second
)

// Sender is an interface for sending WhatsApp messages (for production and testing).
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// Opts holds configuration options for the Cloud API client.
type Opts struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// Option defines a configuration option for the Cloud API client.
type Option func(*Opts)

// WithAccessToken sets the Graph API bearer token.
func WithAccessToken(token string) Option {
	return func(o *Opts) { o.AccessToken = token }
}

// WithPhoneNumberID sets the business phone number identifier messages are sent from.
func WithPhoneNumberID(id string) Option {
	return func(o *Opts) { o.PhoneNumberID = id }
}

// WithBaseURL overrides the Graph API endpoint, primarily for tests.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a new Cloud API client, applying any provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("WhatsApp NewClient options set", "AccessToken_set", cfg.AccessToken != "", "PhoneNumberID_set", cfg.PhoneNumberID != "", "BaseURL_set", cfg.BaseURL != "")

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token must be provided")
	}
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("phone number ID must be provided")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGraphBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &Client{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
	}, nil
}

// SendMessage sends a text message to the given recipient (digits-only,
// country-code-prefixed phone number).
func (c *Client) SendMessage(ctx context.Context, to string, body string) error {
	payload := models.NewTextMessage(to, body)
	reqBody, err := json.Marshal(payload)
	if err != nil {
		slog.Error("WhatsApp SendMessage marshal failed", "error", err, "to", to)
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		slog.Error("WhatsApp SendMessage request build failed", "error", err, "to", to)
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("WhatsApp SendMessage request failed", "error", err, "to", to)
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Error("WhatsApp SendMessage non-2xx response", "status", resp.StatusCode, "to", to, "body", string(respBody))
		return fmt.Errorf("cloud API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	slog.Debug("WhatsApp SendMessage succeeded", "to", to, "body_length", len(body))
	return nil
}
