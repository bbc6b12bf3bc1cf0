// Package api talks to the remote chat endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dbchat/pkg/logging"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "http://localhost:5000"

	chatPath   = "/chat"
	healthPath = "/health"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP error status %d", e.Method, e.Path, e.StatusCode)
}

type chatRequest struct {
	Message string `json:"message"`
}

var errNullBody = errors.New("response body is null")

type chatResponse struct {
	Response *string `json:"response"`
}

// Client calls /chat and /health. It never retries.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client for baseURL. A zero timeout leaves the transport default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc, logger: slog.Default()}
}

// SetLogger overrides the client logger.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Chat sends message and returns the response payload. An absent or empty
// payload is returned as "" with a nil error.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Message: message}).
		Post(chatPath)
	if err != nil {
		c.logger.Error("chat_request_failed", "error", err)
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if !res.IsSuccess() {
		c.logger.Error("chat_request_status", "status_code", res.StatusCode(), "body", res.String())
		return "", &StatusError{Method: "POST", Path: chatPath, StatusCode: res.StatusCode()}
	}

	c.logger.Log(ctx, logging.LevelTrace, "chat_response_body",
		"request_bytes", len(message),
		"response_bytes", len(res.Body()),
	)

	var decoded *chatResponse
	err = json.Unmarshal(res.Body(), &decoded)
	if err == nil && decoded == nil {
		err = errNullBody
	}
	if err != nil {
		c.logger.Error("chat_response_decode_failed", "error", err)
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	c.logger.Info("chat_request_done",
		"status_code", res.StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
		"has_response", decoded.Response != nil && *decoded.Response != "",
	)
	if decoded.Response == nil {
		return "", nil
	}
	return *decoded.Response, nil
}

// Health probes the endpoint. A non-2xx status yields a *StatusError; other
// errors are transport failures.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.http.R().
		SetContext(ctx).
		Get(healthPath)
	if err != nil {
		c.logger.Error("health_probe_failed", "error", err)
		return fmt.Errorf("health probe failed: %w", err)
	}
	if !res.IsSuccess() {
		c.logger.Warn("health_probe_status", "status_code", res.StatusCode())
		return &StatusError{Method: "GET", Path: healthPath, StatusCode: res.StatusCode()}
	}
	c.logger.Debug("health_probe_ok", "status_code", res.StatusCode())
	return nil
}
