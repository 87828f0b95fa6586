// Package httputil provides HTTP client utilities with standard configurations.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// Default timeout for HTTP requests
	defaultTimeout = 30 * time.Second

	// Transport configuration constants
	maxIdleConns        = 10
	maxIdleConnsPerHost = 2
	idleConnTimeout     = 30 * time.Second

	// DefaultMaxBodyBytes caps how much of a response body GetBytes reads.
	DefaultMaxBodyBytes = 16 << 20
)

// NewHTTPClient creates a new HTTP client with the specified timeout.
// The client is configured with connection pooling and idle connection management.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
	}
}

// NewDefaultHTTPClient creates a new HTTP client with default 30 second timeout.
// This is suitable for most API calls and web requests.
func NewDefaultHTTPClient() *http.Client {
	return NewHTTPClient(defaultTimeout)
}

// StatusError is returned by GetBytes for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// ErrBodyTooLarge is returned by GetBytes when a body exceeds its limit.
var ErrBodyTooLarge = errors.New("response body too large")

// GetBytes performs a GET bound to ctx and returns the body, failing with
// ErrBodyTooLarge when it is longer than maxBytes.
// displayURL is used in errors in place of rawURL so secrets do not leak into logs.
func GetBytes(ctx context.Context, client *http.Client, rawURL, displayURL string, maxBytes int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request for %s: %w", displayURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", displayURL, redact(err, rawURL, displayURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: displayURL, StatusCode: resp.StatusCode}
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body from %s: %w", displayURL, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, displayURL, maxBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// redact strips the raw URL out of *url.Error values produced by the client.
func redact(err error, rawURL, displayURL string) error {
	if rawURL == displayURL {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), rawURL, displayURL), cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }
