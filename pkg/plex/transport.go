package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"
)

// request describes a single API call.
type request struct {
	method   string
	endpoint string // absolute URL without query string
	query    url.Values
	headers  map[string]string
	accept   string
	username string // basic auth, plex.tv sign-in only
	password string
}

const maxErrorBody = 2048

// call makes an HTTP request to a Plex endpoint with retry logic.
//
// It handles:
// - Request construction with the X-Plex-* headers
// - Token injection for authenticated requests
// - Status code mapping to *Error
// - Retry of 5xx and network errors with exponential backoff
// - Context cancellation
func (c *Client) call(ctx context.Context, r request) ([]byte, error) {
	target := r.endpoint
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	path := r.endpoint
	if u, err := url.Parse(r.endpoint); err == nil {
		path = u.Path
	}

	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("plex: %s %s (attempt %d/%d)", r.method, path, i+1, maxRetries)

		req, err := http.NewRequestWithContext(ctx, r.method, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		c.applyHeaders(req, r)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("plex: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := newError(r.method, path, resp.StatusCode, body)
			if apiErr.Temporary() && i < maxRetries-1 {
				c.logDebugf("plex: server error, retrying: %v", apiErr)
				lastErr = apiErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, apiErr
		}

		c.logDebugf("plex: %s %s succeeded", r.method, path)
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getXML performs an authenticated GET against the server and decodes the
// MediaContainer response into out.
func (c *Client) getXML(ctx context.Context, path string, query url.Values, headers map[string]string, out interface{}) error {
	if c.token == "" {
		return ErrNoToken
	}
	body, err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: c.baseURL + path,
		query:    query,
		headers:  headers,
		accept:   "application/xml",
	})
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse XML response: %w", err)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request, r request) {
	accept := r.accept
	if accept == "" {
		accept = "application/xml"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.product+"/"+ProductVersion)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", c.product)
	req.Header.Set("X-Plex-Version", ProductVersion)
	req.Header.Set("X-Plex-Device-Name", c.product)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
	if c.token != "" {
		req.Header.Set("X-Plex-Token", c.token)
	}
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}
	for k, v := range r.headers {
		if strings.TrimSpace(v) == "" {
			continue
		}
		req.Header.Set(k, v)
	}
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
