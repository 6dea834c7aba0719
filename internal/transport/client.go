// Package transport provides the HTTP client plumbing shared by the
// scheduling API client: authentication, JSON decoding, per-call
// timeouts and bounded retry with backoff for transient failures.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/logging"
)

// DefaultTimeout is the default per-call timeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

// DefaultRetries is the default number of additional attempts for
// transient failures.
const DefaultRetries = 2

// Client provides HTTP client functionality with authentication and
// bounded retry. Retries apply only to transient transport failures
// (network errors, 429, 5xx); client-side failures are never retried.
type Client struct {
	http    *http.Client
	auth    Authenticator
	key     string
	retries int
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRetries sets how many additional attempts transient failures get.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the base backoff between attempts. Each retry doubles it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a transport client with the given authenticator and key.
func New(auth Authenticator, key string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		auth:    auth,
		key:     key,
		retries: DefaultRetries,
		backoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a GET request and decodes the JSON response body
// into target. Transient failures are retried with exponential backoff
// until the attempt budget runs out or the context is canceled.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return err
			}
			logging.FromContext(ctx).Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Msg("Retrying request")
		}

		err := c.getJSONOnce(ctx, url, target)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
	}

	return lastErr
}

// getJSONOnce performs a single attempt.
func (c *Client) getJSONOnce(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errors.ValidationError{Field: "url", Value: url, Message: err.Error()}
	}

	if c.key != "" && c.auth != nil {
		c.auth.Apply(req, c.key)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &errors.APIError{Endpoint: url, Message: "request canceled", Err: errors.ErrCanceled}
		}
		return &errors.APIError{Endpoint: url, Message: "request failed", Err: err}
	}

	return DecodeResponse(url, resp, target)
}

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(endpoint string, resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.APIError{Endpoint: endpoint, Message: "reading response body", Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return &errors.APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: string(body), Err: errors.ErrNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return errors.NewAPIError(endpoint, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}

	return nil
}

// wait sleeps for the attempt's backoff or until the context is done.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.backoff << (attempt - 1)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return &errors.APIError{Message: "canceled during retry backoff", Err: errors.ErrCanceled}
	case <-timer.C:
		return nil
	}
}

// retryable reports whether an error is a transient transport failure.
// 4xx responses other than 429 indicate a client-side problem and are
// never retried.
func retryable(err error) bool {
	if errors.Is(err, errors.ErrCanceled) {
		return false
	}
	if errors.IsRateLimited(err) || errors.IsSourceUnavailable(err) {
		return true
	}

	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		// Network-level failure: no status code was ever received.
		return apiErr.StatusCode == 0 && apiErr.Err != nil
	}
	return false
}
