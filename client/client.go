// Package client implements the storefront API facade: one operation per
// use case, composing the transport, the strict response decoder, and
// the session store. Operations requiring auth short-circuit locally
// when no token is present instead of issuing the request.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/session"
	"github.com/jemaristudio/eshop-go/transport"
)

// Client is the access point through which callers request data or
// perform mutations on the remote storefront service.
type Client struct {
	config    *core.Config
	transport *transport.Client
	sessions  session.Store
	logger    core.Logger
	telemetry core.Telemetry
}

// Dependencies carries optional collaborators for a Client. Zero values
// get sensible defaults derived from the configuration.
type Dependencies struct {
	Sessions  session.Store
	Logger    core.Logger
	Telemetry core.Telemetry
	Transport *transport.Client
}

// New creates a facade bound to the given configuration.
func New(cfg *core.Config, deps Dependencies) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required: %w", core.ErrMissingConfiguration)
	}

	logger := deps.Logger
	if logger == nil {
		logger = core.NewProductionLogger(cfg.Logging)
	}
	telemetry := deps.Telemetry
	if telemetry == nil {
		telemetry = &core.NoOpTelemetry{}
	}

	sessions := deps.Sessions
	if sessions == nil {
		switch cfg.Session.Provider {
		case "redis":
			store, err := session.NewRedisStore(cfg.Session.RedisURL, cfg.Session, logger)
			if err != nil {
				return nil, err
			}
			sessions = store
		default:
			sessions = session.NewMemoryStore()
		}
	}

	tr := deps.Transport
	if tr == nil {
		tr = transport.New(transport.Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Logger:    logger,
		})
	}

	return &Client{
		config:    cfg,
		transport: tr,
		sessions:  sessions,
		logger:    logger,
		telemetry: telemetry,
	}, nil
}

// Sessions exposes the session store so embedders can inspect auth state.
func (c *Client) Sessions() session.Store {
	return c.sessions
}

// endpoint joins a path onto the configured base URL.
func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// bearerHeaders returns the auth header map for an operation, or an
// auth error when the session holds no token. The request is never
// issued in that case.
func (c *Client) bearerHeaders(ctx context.Context, op string) (map[string]string, error) {
	token, err := c.sessions.Token(ctx)
	if err != nil {
		return nil, &core.APIError{Op: op, Kind: "session", Err: err}
	}
	if token == "" {
		return nil, &core.APIError{Op: op, Kind: "auth", Err: core.ErrUnauthenticated}
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// transportError wraps a transport-level failure for an operation.
func transportError(op string, err error) error {
	return &core.APIError{Op: op, Kind: "network", Err: err}
}

// decodeError wraps a decode failure for an operation.
func decodeError(op string, err error) error {
	return &core.APIError{Op: op, Kind: "decode", Err: err}
}

// serverError maps a non-2xx response onto the error taxonomy, keeping
// the server-supplied message when the body carries one.
func serverError(op string, resp *transport.Response, fallback string) error {
	msg := serverMessage(resp.Body, fallback)
	apiErr := &core.APIError{Op: op, Status: resp.Code, Message: msg}
	switch {
	case resp.Code == 401 || resp.Code == 403:
		apiErr.Kind = "auth"
		apiErr.Err = core.ErrUnauthenticated
	case resp.Code == 404:
		apiErr.Kind = "not_found"
		apiErr.Err = core.ErrNotFound
	default:
		apiErr.Kind = "server"
		apiErr.Err = core.ErrServer
	}
	return apiErr
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, core.Span) {
	return c.telemetry.StartSpan(ctx, name)
}

func (c *Client) logFailure(ctx context.Context, op, phase string, err error) {
	c.logger.Error("Storefront request failed", map[string]interface{}{
		"operation": op,
		"phase":     phase,
		"error":     err.Error(),
	})
}
