// Package apiclient is a thin, typed client for the trip-planning REST backend.
// Client.Do is the single place requests are built: it joins paths onto the
// base URL, attaches the auth token, encodes JSON or multipart bodies, and
// turns non-2xx responses into *HTTPError. Resource wrappers (trips.go,
// expenses.go, ...) only format paths and payloads.
//
// There are no retries and no client-side timeout: a request is attempted once
// and lives as long as the caller's context.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tripwhizz/tripsync/internal/apiclient"

// TokenProvider supplies the authentication token. ok is false when the user
// is not signed in; authenticated requests are then sent without a header and
// the backend decides.
type TokenProvider interface {
	Token() (token string, ok bool)
}

// Client sends requests to the backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenProvider
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTracerProvider replaces the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// New returns a Client rooted at baseURL (scheme + host, optionally a path
// prefix). tokens may be nil for a client that only calls public endpoints.
func New(baseURL string, tokens TokenProvider, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient.New: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient.New: base url %q must include scheme and host", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
		tokens:  tokens,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is JSON-encoded when non-nil. Ignored when Multipart is set.
	Body any

	// Multipart sends a multipart/form-data upload. The JSON content type is
	// omitted so the multipart writer's boundary header is used instead.
	Multipart *MultipartBody

	// Public marks endpoints that must not carry the Authorization header
	// (login, registration, password reset).
	Public bool
}

// Do performs req and decodes a successful JSON response into out.
// out may be nil when the caller does not need the body.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	err := c.do(ctx, span, req, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) do(ctx context.Context, span trace.Span, req Request, out any) error {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req.Path, req.Query), body)
	if err != nil {
		return fmt.Errorf("apiclient.Client.Do: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if !req.Public && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			httpReq.Header.Set("Authorization", "Token "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("apiclient.Client.Do: %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient.Client.Do: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(req.Method, req.Path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Method: req.Method, Path: req.Path, Err: err}
	}
	return nil
}

// url joins p onto the base URL, preserving p's trailing slash (the backend
// routes are slash-terminated).
func (c *Client) url(p string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(p, "/")
	u.RawPath = ""
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		return req.Multipart.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("apiclient.Client.Do: encode body: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}
