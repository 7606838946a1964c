package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"eventfeed/pkg/models"
)

var (
	// ErrUnexpectedStatus is wrapped by every StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDecode marks a response body that is not the expected JSON shape.
	ErrDecode = errors.New("malformed response body")
)

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: %s %d", e.Op, ErrUnexpectedStatus, e.Code)
	}
	return fmt.Sprintf("%s: %s %d: %s", e.Op, ErrUnexpectedStatus, e.Code, body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// EventFeedClient talks to the detection backend REST API.
type EventFeedClient struct {
	HTTP   *resty.Client
	Config ClientConfig
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration // zero means no per-request timeout
}

type requestIDKey struct{}

// WithRequestID returns a context whose requests carry an X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func New(cfg ClientConfig) *EventFeedClient {
	r := resty.New()
	r.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	r.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}

	return &EventFeedClient{
		HTTP:   r,
		Config: cfg,
	}
}

func (c *EventFeedClient) request(ctx context.Context) *resty.Request {
	req := c.HTTP.R().SetContext(ctx)
	if id := requestID(ctx); id != "" {
		req.SetHeader("X-Request-ID", id)
	}
	return req
}

// get issues a GET and decodes the body into out. A JSON null body leaves a
// slice nil; list callers reject that.
func (c *EventFeedClient) get(ctx context.Context, op, path string, out interface{}) error {
	resp, err := c.request(ctx).Get(path)
	return decode(op, resp, err, out)
}

// post sends body as JSON and decodes the response into out.
func (c *EventFeedClient) post(ctx context.Context, op, path string, body, out interface{}) error {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	return decode(op, resp, err, out)
}

func decode(op string, resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !resp.IsSuccess() {
		return &StatusError{Op: op, Code: resp.StatusCode(), Body: resp.String()}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return nil
}

// GetHealth checks the backend status endpoint.
func (c *EventFeedClient) GetHealth(ctx context.Context) (models.Health, error) {
	var h models.Health
	err := c.get(ctx, "get health", "/health", &h)
	return h, err
}
