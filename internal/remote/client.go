// Package remote talks to the todo REST store. It is the only code that
// knows the wire contract; callers see model.Item values and errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// ErrRequestFailed is matched by every failure coming out of Client,
// whether the request never reached the store or the store said no.
var ErrRequestFailed = errors.New("remote request failed")

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Is(target error) bool { return target == ErrRequestFailed }

type transportError struct {
	method, path string
	err          error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.method, e.path, e.err)
}
func (e *transportError) Unwrap() error        { return e.err }
func (e *transportError) Is(target error) bool { return target == ErrRequestFailed }

const maxErrorBody = 512

// Client is an HTTP client for the todo store.
type Client struct {
	base      *url.URL
	http      *http.Client
	token     string
	userAgent string
	logger    *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its transport is still
// wrapped for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends `Authorization: Bearer <token>` on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	c := &Client{
		base:      u,
		http:      &http.Client{},
		userAgent: "tada",
		logger:    logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	// copy so the caller's client is left alone
	hc := *c.http
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(base)
	c.http = &hc
	return c, nil
}

// BaseURL is the store root all paths are joined onto.
func (c *Client) BaseURL() string { return c.base.String() }

// ---------------------------------------------------
// Contract
// ---------------------------------------------------

type listResponse struct {
	Todos []model.Item `json:"todos"`
}

type getResponse struct {
	Todo *model.Item `json:"todo"`
}

type createResponse struct {
	ID model.ID `json:"id"`
}

type descriptionBody struct {
	Description string `json:"description"`
}

// List fetches every item in server order.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "todos", nil, &out); err != nil {
		return nil, err
	}
	if out.Todos == nil {
		return []model.Item{}, nil
	}
	return out.Todos, nil
}

// Get fetches a single item.
func (c *Client) Get(ctx context.Context, id model.ID) (model.Item, error) {
	var out getResponse
	p := todoPath(id)
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return model.Item{}, err
	}
	if out.Todo == nil {
		return model.Item{}, &transportError{method: http.MethodGet, path: "/" + p, err: errors.New("response has no todo")}
	}
	return *out.Todo, nil
}

// Create stores a new item and returns the id the server assigned.
func (c *Client) Create(ctx context.Context, description string) (model.ID, error) {
	var out createResponse
	if err := c.do(ctx, http.MethodPost, "todo", descriptionBody{Description: description}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &transportError{method: http.MethodPost, path: "/todo", err: errors.New("response has no id")}
	}
	return out.ID, nil
}

// Advance asks the server to move the item to its next status. No body is
// sent; the server alone decides the new value.
func (c *Client) Advance(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodPut, todoPath(id), nil, nil)
}

func (c *Client) UpdateDescription(ctx context.Context, id model.ID, description string) error {
	return c.do(ctx, http.MethodPatch, todoPath(id), descriptionBody{Description: description}, nil)
}

func (c *Client) Delete(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id model.ID) string {
	return "todo/" + url.PathEscape(string(id))
}

// ---------------------------------------------------
// Transport
// ---------------------------------------------------

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	display := "/" + path
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, display, err)
		}
		rd = bytes.NewReader(b)
	}

	// base always ends in "/", so relative refs land below it
	target, err := c.base.Parse(path)
	if err != nil {
		return &transportError{method: method, path: display, err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), rd)
	if err != nil {
		return &transportError{method: method, path: display, err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("User-Agent", c.userAgent)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", display, "request_id", reqID, "err", err)
		return &transportError{method: method, path: display, err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "path", display, "request_id", reqID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       display,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &transportError{method: method, path: display, err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
