// Package jobhunter provides a Go client SDK for the JobHunter job
// marketplace API, centered on the session and credential lifecycle:
// durable credential storage, a transport that transparently recovers from
// credential expiry with a single refresh-and-retry, a session state
// machine, and navigation guards built on top of it.
//
// The SDK defines interfaces for credential storage, the auth API surface,
// and session state. Concrete implementations are injected via Option
// functions, keeping the root package independent of any transport.
//
// Example usage:
//
//	store := credstore.New()
//	api, _ := rest.New(cfg.BaseURL, store)
//	mgr := session.New(store, api)
//	client, err := jobhunter.NewClient(
//	    jobhunter.Config{BaseURL: cfg.BaseURL},
//	    jobhunter.WithCredentialStore(store),
//	    jobhunter.WithAuthAPI(api),
//	    jobhunter.WithSession(mgr),
//	)
package jobhunter

import (
	"fmt"
	"io"
	"log/slog"
)

// Client is the aggregate handle for SDK consumers. The middleware and
// guard layers read session state through it; implementations are injected
// via Option functions.
type Client struct {
	config  Config
	logger  *slog.Logger
	store   CredentialStore
	auth    AuthAPI
	session SessionSource
}

// Config holds connection configuration.
type Config struct {
	// BaseURL is the JobHunter API root, e.g. "https://api.jobhunter.vn/api/v1".
	BaseURL string
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCredentialStore sets the credential storage implementation.
func WithCredentialStore(s CredentialStore) Option {
	return func(c *Client) { c.store = s }
}

// WithAuthAPI sets the auth API implementation.
func WithAuthAPI(a AuthAPI) Option {
	return func(c *Client) { c.auth = a }
}

// WithSession sets the session state source.
func WithSession(s SessionSource) Option {
	return func(c *Client) { c.session = s }
}

// NewClient creates a new JobHunter client with the given configuration
// and options.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jobhunter: BaseURL is required")
	}

	c := &Client{config: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Store returns the credential store, or nil if not configured.
func (c *Client) Store() CredentialStore { return c.store }

// Auth returns the auth API, or nil if not configured.
func (c *Client) Auth() AuthAPI { return c.auth }

// Session returns the session source, or nil if not configured.
func (c *Client) Session() SessionSource { return c.session }

// Close releases all resources held by the client.
// Any injected component that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{c.store, c.auth, c.session}
	var firstErr error
	for _, v := range closers {
		if cl, ok := v.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
