// Package healthapi is the client for the external health-data API that owns
// user accounts and recorded acceleration datasets.
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jengzang/accel-dashboard-go/internal/models"
	"github.com/jengzang/accel-dashboard-go/internal/observability"
)

// Upstream endpoint labels, also used for metrics.
const (
	EndpointLogin            = "login"
	EndpointRegister         = "register_user"
	EndpointAccelerationData = "acceleration_data"
)

const maxBodyBytes = 64 << 20

// Client talks to the health API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// NewClient creates a new health API client.
// retries is the number of extra attempts made by idempotent calls on transport errors.
func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		backoff:    200 * time.Millisecond,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges a username and password for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	start := time.Now()
	resp, err := c.postJSON(ctx, "/login", credentials{Username: username, Password: password})
	if err != nil {
		observability.RecordUpstream(EndpointLogin, "error", time.Since(start))
		return "", &ConnectionError{Op: EndpointLogin, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var body loginResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err == nil && body.Token != "" {
			observability.RecordUpstream(EndpointLogin, "ok", time.Since(start))
			return body.Token, nil
		}
	}

	observability.RecordUpstream(EndpointLogin, "rejected", time.Since(start))
	return "", ErrInvalidCredentials
}

// Register creates a new account. The returned message is suitable for display.
func (c *Client) Register(ctx context.Context, username, password, email string) (string, error) {
	start := time.Now()
	resp, err := c.postJSON(ctx, "/register_user", credentials{Username: username, Password: password, Email: email})
	if err != nil {
		observability.RecordUpstream(EndpointRegister, "error", time.Since(start))
		return "", &ConnectionError{Op: EndpointRegister, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		observability.RecordUpstream(EndpointRegister, "ok", time.Since(start))
		return "Registration successful", nil
	}

	observability.RecordUpstream(EndpointRegister, "rejected", time.Since(start))
	var body messageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil || body.Message == "" {
		return "", &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("Registration failed (status %d)", resp.StatusCode)}
	}
	return "", &APIError{Status: resp.StatusCode, Message: body.Message}
}

// GetAccelerationData fetches the user's recorded acceleration datasets.
// An account without recordings yields an empty slice and no error.
func (c *Client) GetAccelerationData(ctx context.Context, token string) ([]models.RawDataset, error) {
	start := time.Now()
	resp, err := c.getWithRetry(ctx, "/health/acceleration_data", token)
	if err != nil {
		observability.RecordUpstream(EndpointAccelerationData, "error", time.Since(start))
		return nil, &ConnectionError{Op: EndpointAccelerationData, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.RecordUpstream(EndpointAccelerationData, "rejected", time.Since(start))
		return nil, ErrSessionExpired
	}

	var body models.AccelerationDataResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		observability.RecordUpstream(EndpointAccelerationData, "invalid", time.Since(start))
		return nil, fmt.Errorf("failed to decode acceleration data: %w", err)
	}

	if body.Status != "success" {
		observability.RecordUpstream(EndpointAccelerationData, "rejected", time.Since(start))
		message := body.Message
		if message == "" {
			message = "No data available"
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	observability.RecordUpstream(EndpointAccelerationData, "ok", time.Since(start))
	if body.Data == nil {
		return []models.RawDataset{}, nil
	}
	return body.Data, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// getWithRetry retries transport failures with linear backoff. HTTP error
// statuses are returned to the caller as-is.
func (c *Client) getWithRetry(ctx context.Context, path, token string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		log.Printf("[HealthAPI] GET %s attempt %d failed: %v", path, attempt+1, err)
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retries+1, lastErr)
}
