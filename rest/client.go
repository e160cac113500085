// Package rest implements the JobHunter REST transport: a single configured
// HTTP client whose request stage attaches the stored access credential and
// whose response stage transparently recovers from credential expiry with an
// at-most-once refresh-and-replay.
//
// The refresh token itself never passes through this package's hands: the
// server sets it as an HTTP-only cookie, the client's cookie jar carries it
// back on the refresh call.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	jobhunter "github.com/jobhunter/client-go"
	"github.com/jobhunter/client-go/metrics"
)

// Client is the configured HTTP client for the JobHunter API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      jobhunter.CredentialStore
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// onSessionExpired runs after a refresh attempt fails terminally,
	// once the store has been cleared. The session manager hooks its
	// invalidation here.
	onSessionExpired func()

	// sf collapses concurrent refresh attempts into a single in-flight
	// call. Every request that hit a 401 while it was running shares its
	// outcome, then replays at most once with the rotated credential.
	sf singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached if the
// client has none, since the refresh cookie lives in the jar.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a REST client for the API rooted at baseURL, reading and
// rotating credentials through store.
func New(baseURL string, store jobhunter.CredentialStore, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rest: baseURL is required")
	}
	if store == nil {
		return nil, fmt.Errorf("rest: credential store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("rest: cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metrics.New(false)
	}
	return c, nil
}

// OnSessionExpired registers fn to run when a refresh attempt fails
// terminally. At that point the credential store is already empty.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

type callOptions struct {
	noAutoRefresh bool
}

// CallOption adjusts a single request.
type CallOption func(*callOptions)

// WithoutAutoRefresh disables the 401 refresh-and-replay stage for one call.
// Used for credential-issuing endpoints, where a 401 means the submitted
// input was wrong, not that the session expired.
func WithoutAutoRefresh() CallOption {
	return func(o *callOptions) { o.noAutoRefresh = true }
}

// Do performs one API call. body (if non-nil) is sent as JSON; the response
// payload is unwrapped from the backend envelope into out (if non-nil).
//
// A 401 triggers at most one refresh-and-replay: the caller only ever sees
// the final outcome. If the refresh itself fails, the store is cleared, the
// session-expired hook fires and the call returns ErrAuthExpired.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	var co callOptions
	for _, o := range opts {
		o(&co)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !co.noAutoRefresh {
		drain(resp.Body)

		if _, err := c.refresh(ctx); err != nil {
			c.store.Clear()
			c.metrics.RecordSessionInvalidated()
			c.logger.Warn("session expired, refresh failed",
				"method", method, "path", path, "error", err)
			if c.onSessionExpired != nil {
				c.onSessionExpired()
			}
			return fmt.Errorf("rest: %s %s: %w: %w", method, path, jobhunter.ErrAuthExpired, err)
		}

		// Replay exactly once with the rotated credential; send re-reads
		// the store. A second 401 is terminal for the caller.
		c.metrics.RecordReplay()
		resp, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}

	return c.decode(resp, out)
}

// send builds and issues one HTTP request, attaching the stored credential
// if one is present. Absent credentials are not an error: unauthenticated
// calls are legal.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if cred, ok := c.store.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: %s %s: %w: %w", method, path, jobhunter.ErrNetwork, err)
	}
	return resp, nil
}

// refresh mints a new access credential through the refresh endpoint and
// writes it to the store. Concurrent callers share one in-flight attempt.
func (c *Client) refresh(ctx context.Context) (jobhunter.Credential, error) {
	v, err, _ := c.sf.Do("refresh", func() (interface{}, error) {
		cred, err := c.doRefresh(ctx)
		c.metrics.RecordRefresh(err == nil)
		if err != nil {
			return nil, err
		}
		c.store.Set(cred)
		c.logger.Debug("access credential rotated")
		return cred, nil
	})
	if err != nil {
		return jobhunter.Credential{}, err
	}
	return v.(jobhunter.Credential), nil
}

// doRefresh performs the refresh call itself. It goes through the request
// stage like any other call but never back into the 401 branch: a failed
// refresh is terminal for this code path.
func (c *Client) doRefresh(ctx context.Context) (jobhunter.Credential, error) {
	resp, err := c.send(ctx, http.MethodGet, "/auth/refresh", nil)
	if err != nil {
		return jobhunter.Credential{}, err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.decode(resp, &payload); err != nil {
		return jobhunter.Credential{}, fmt.Errorf("rest: refresh: %w", err)
	}
	if payload.AccessToken == "" {
		return jobhunter.Credential{}, fmt.Errorf("rest: refresh: %w: empty access_token", jobhunter.ErrServer)
	}
	return jobhunter.Credential{AccessToken: payload.AccessToken}, nil
}

// envelope is the backend's standard response wrapper. Some endpoints skip
// it and return the bare payload, so decode handles both.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// decode consumes the response body. Non-2xx statuses become *APIError;
// 2xx bodies are unwrapped from the envelope into out.
func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rest: read response: %w: %w", jobhunter.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &jobhunter.APIError{StatusCode: resp.StatusCode, Message: envelopeMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}

	payload := data
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("rest: malformed payload: %w: %w", jobhunter.ErrServer, err)
	}
	return nil
}

// envelopeMessage pulls the human-readable message out of an error body.
// The backend sends message as either a string or a list of strings.
func envelopeMessage(data []byte) string {
	var env struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	switch m := env.Message.(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, v := range m {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return env.Error
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
