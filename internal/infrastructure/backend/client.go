// Package backend is the single HTTP entry point to the task backend. It
// attaches the session credential to every request and turns a rejected
// credential into a forced-logout signal.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/api/metrics"
	"github.com/lf9/taskdesk/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// CredentialSource yields the bearer token to attach, or "" for none.
type CredentialSource interface {
	Credential() string
}

// UnauthorizedNotifier is told when the backend rejects a credential.
type UnauthorizedNotifier interface {
	Raise()
}

// APIError is a non-2xx backend response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	// Authenticated is set when the rejected request carried a credential.
	Authenticated bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap maps the status to a domain error. A 401 means the session was
// rejected when a credential was sent, and bad login data otherwise.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		if e.Authenticated {
			return domain.ErrUnauthorized
		}
		return domain.ErrInvalidCredentials
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	default:
		return nil
	}
}

// Client dispatches JSON requests to the backend.
type Client struct {
	baseURL      string
	http         *http.Client
	creds        CredentialSource
	unauthorized UnauthorizedNotifier
	log          zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a Client for baseURL. creds and unauthorized may be nil.
func New(baseURL string, creds CredentialSource, unauthorized UnauthorizedNotifier, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		creds:        creds,
		unauthorized: unauthorized,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentialSource wires the credential source after construction, for
// when the source itself depends on the client.
func (c *Client) SetCredentialSource(creds CredentialSource) {
	c.creds = creds
}

// envelope is the {message, data} wrapper some backend variants use.
type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Do sends body as JSON and decodes the (unwrapped) response into out.
// body and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if c.creds != nil {
		token = c.creds.Credential()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestsTotal.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %w", method, path, domain.ErrServiceUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:        method,
			Path:          path,
			Status:        resp.StatusCode,
			Message:       errorMessage(raw, resp.StatusCode),
			Authenticated: token != "",
		}
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend error")
		if apiErr.Status == http.StatusUnauthorized && apiErr.Authenticated {
			metrics.ForcedLogoutsTotal.Inc()
			if c.unauthorized != nil {
				c.unauthorized.Raise()
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// unwrap returns the data member of a {message, data} envelope, or raw
// itself when the response is not wrapped.
func unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return raw
	}
	if data, ok := fields["data"]; ok && len(data) > 0 {
		return data
	}
	return raw
}

func errorMessage(raw []byte, status int) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return http.StatusText(status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Ping checks that the backend answers HTTP at all. Any status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrServiceUnreachable, err)
	}
	_ = resp.Body.Close()
	return nil
}
