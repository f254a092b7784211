package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fixture-matching/internal/config"
)

// Client submits parsed emails to the fixture-matching API
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     *config.APIConfig
}

// ParseRequest is the payload for the parse endpoint
type ParseRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Persist bool   `json:"persist"`
}

// ParseResult is the subset of the parse response the ingest worker cares about
type ParseResult struct {
	Label           string  `json:"label"`
	LabelConfidence float64 `json:"label_confidence"`
	GateDecision    string  `json:"gate_decision"`
	VesselsFound    int     `json:"vessels_found"`
	CargosFound     int     `json:"cargos_found"`
	TotalMatches    int     `json:"total_matches"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RetryableError represents an error that should be retried
type RetryableError struct {
	Message    string
	StatusCode int
}

func (e *RetryableError) Error() string {
	return e.Message
}

// NewClient creates a new API client
func NewClient(cfg *config.APIConfig) *Client {
	if cfg == nil {
		cfg = &config.APIConfig{
			URL:           "http://localhost:8080",
			Timeout:       30 * time.Second,
			RetryCount:    3,
			RetryDelay:    1 * time.Second,
			UserAgent:     "fixture-ingest/1.0",
			BackoffFactor: 2.0,
		}
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "fixture-ingest/1.0"
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = 2.0
	}

	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// SubmitEmail sends an email to the parse endpoint and returns the parse
// outcome. Retries on transient server errors with exponential backoff.
func (c *Client) SubmitEmail(subject, body string, persist bool) (*ParseResult, error) {
	request := ParseRequest{
		Subject: subject,
		Body:    body,
		Persist: persist,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/parse", c.baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		result, err := c.executeParse(url, requestBody)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < c.config.RetryCount {
			time.Sleep(c.backoffDelay(attempt))
		}
	}

	return nil, fmt.Errorf("parse request failed after %d attempts: %w", c.config.RetryCount+1, lastErr)
}

// executeParse executes a single parse request
func (c *Client) executeParse(url string, body []byte) (*ParseResult, error) {
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Message: fmt.Sprintf("HTTP request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var result ParseResult
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		return &result, nil

	case http.StatusBadRequest:
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return nil, fmt.Errorf("bad request: %s", errorResp.Error)
		}
		return nil, fmt.Errorf("bad request: %s", string(respBody))

	case http.StatusServiceUnavailable, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusGatewayTimeout:
		return nil, &RetryableError{
			Message:    fmt.Sprintf("server error (%d): %s", resp.StatusCode, string(respBody)),
			StatusCode: resp.StatusCode,
		}

	default:
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}
}

// HealthCheck verifies the API is accessible
func (c *Client) HealthCheck() error {
	url := fmt.Sprintf("%s/api/health", c.baseURL)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetBaseURL returns the configured base URL
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// isRetryable determines if an error should trigger a retry
func isRetryable(err error) bool {
	_, ok := err.(*RetryableError)
	return ok
}

// backoffDelay calculates the delay for exponential backoff, capped at 30s
func (c *Client) backoffDelay(attempt int) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.config.BackoffFactor
	}

	delay := time.Duration(float64(c.config.RetryDelay) * multiplier)

	maxDelay := 30 * time.Second
	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}
