// Package transport performs the single HTTP round-trip behind every
// facade operation. One call, one request, body always closed.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jemaristudio/eshop-go/core"
)

// Request describes one HTTP call.
type Request struct {
	URL     string
	Method  string
	Body    []byte
	Headers map[string]string
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Response carries the outcome of a completed round-trip.
// Body and Bytes are mutually exclusive: Send fills Body, SendBytes fills
// Bytes (binary mode is used only for image payloads).
type Response struct {
	Code    int
	Body    string
	Bytes   []byte
	Headers http.Header
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.Code >= 200 && r.Code <= 299
}

// methods that may carry a request body
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Client issues blocking HTTP requests with a fixed per-request timeout.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     core.Logger
}

// Options configures a transport Client.
type Options struct {
	// Timeout applies to every request unless overridden per request.
	Timeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string
	// Logger defaults to a no-op logger.
	Logger core.Logger
	// Base is the underlying RoundTripper. Defaults to an
	// otelhttp-instrumented http.DefaultTransport so trace context
	// propagates to the API without further wiring.
	Base http.RoundTripper
}

// New creates a transport client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = &core.NoOpLogger{}
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(base),
		},
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
}

// Send performs one round-trip and decodes the response body as text.
// Non-2xx responses are returned with their body intact so callers can
// extract the server-supplied message; only transport-level failures
// (DNS, timeout, connection reset) produce an error.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	return c.send(ctx, req, false)
}

// SendBytes performs one round-trip keeping the response body as raw
// bytes. Used only for image payloads.
func (c *Client) SendBytes(ctx context.Context, req Request) (*Response, error) {
	return c.send(ctx, req, true)
}

func (c *Client) send(ctx context.Context, req Request, binary bool) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	sendBody := len(req.Body) > 0 && bodyMethods[method]
	if sendBody {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	// Default content type applies only when the caller supplies a body
	// and did not set one explicitly.
	if sendBody && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("X-Request-Id", requestID)

	c.logger.Debug("HTTP request", map[string]interface{}{
		"operation":  "http_request",
		"method":     method,
		"url":        req.URL,
		"request_id": requestID,
		"binary":     binary,
	})
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("HTTP request failed", map[string]interface{}{
			"operation":  "http_request_error",
			"method":     method,
			"url":        req.URL,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close() // Error can be safely ignored as we've read the body
	}()

	// The body is read regardless of status so non-2xx responses keep
	// their error payload (the stream can only be read once).
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("HTTP response read failed", map[string]interface{}{
			"operation":  "http_response_error",
			"method":     method,
			"url":        req.URL,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, classifyTransportError(err)
	}

	c.logger.Debug("HTTP response", map[string]interface{}{
		"operation":   "http_response",
		"method":      method,
		"url":         req.URL,
		"request_id":  requestID,
		"status_code": resp.StatusCode,
		"body_size":   len(raw),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	out := &Response{
		Code:    resp.StatusCode,
		Headers: resp.Header,
	}
	if binary {
		out.Bytes = raw
	} else {
		out.Body = string(raw)
	}
	return out, nil
}

// classifyTransportError maps low-level failures onto the client error
// taxonomy so every operation reports the same kinds.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrNetwork, err)
}
