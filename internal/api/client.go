// Package api implements the data-access layer for the fairness
// analysis backend: it turns typed operations into outbound HTTP calls,
// enforces per-mode deadlines, and normalizes every failure into a
// domain.APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairsight-ai/fairsight/internal/domain"
)

const (
	defaultBaseURL = "http://localhost:8000"

	// JSON-mode calls carry no body and should answer fast.
	defaultRequestTimeout = 10 * time.Second

	// Multipart calls upload a dataset; give them room.
	defaultUploadTimeout = 30 * time.Second
)

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the backend base address.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the structured logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeouts overrides the per-mode deadlines (request covers JSON
// GETs, upload covers multipart POSTs).
func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = request
		c.uploadTimeout = upload
	}
}

// Client is the HTTP client for the analysis backend. It holds no
// per-call state; a single instance is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// New creates a client for the given base address. An empty baseURL
// falls back to the default local backend.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:         slog.Default(),
		requestTimeout: defaultRequestTimeout,
		uploadTimeout:  defaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload is the file part of a multipart submission.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// formField is one scalar entry of a multipart body. Order matters on
// the wire: the file part goes first, then fields in declared order.
type formField struct {
	name  string
	value string
}

// getJSON executes a JSON-mode GET and decodes the success body into
// out. Every failure path returns a *domain.APIError.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.logger.Debug("failed to build request", slog.String("path", path), slog.String("error", err.Error()))
		return domain.ErrNetwork()
	}
	req.Header.Set("Content-Type", "application/json")

	body, apiErr := c.do(req)
	if apiErr != nil {
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Debug("undecodable success body", slog.String("path", path), slog.String("error", err.Error()))
		return domain.ErrMalformed()
	}
	return nil
}

// postMultipart executes a multipart-mode POST and returns the raw
// success body. The file part is written first, then fields in order.
func (c *Client) postMultipart(ctx context.Context, path string, file Upload, fields []formField) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Filename)
	if err != nil {
		return nil, domain.ErrNetwork()
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		c.logger.Debug("failed to read upload", slog.String("path", path), slog.String("error", err.Error()))
		return nil, domain.ErrNetwork()
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, domain.ErrNetwork()
		}
	}
	if err := w.Close(); err != nil {
		return nil, domain.ErrNetwork()
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, domain.ErrNetwork()
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	body, apiErr := c.do(req)
	if apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

// postMultipartJSON is postMultipart plus JSON decoding of the success
// body into out.
func (c *Client) postMultipartJSON(ctx context.Context, path string, file Upload, fields []formField, out any) error {
	body, err := c.postMultipart(ctx, path, file, fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Debug("undecodable success body", slog.String("path", path), slog.String("error", err.Error()))
		return domain.ErrMalformed()
	}
	return nil
}

// do dispatches one request and applies the failure classification: a
// transport error becomes a timeout/connect/network APIError, a failing
// status becomes a server APIError, and a success returns the raw body.
func (c *Client) do(req *http.Request) ([]byte, *domain.APIError) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := classifyTransportError(err)
		c.logger.Warn("request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("kind", string(apiErr.Kind)),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// A deadline firing mid-body surfaces here, not in Do.
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := serverError(resp.StatusCode, body)
		c.logger.Warn("request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, apiErr
	}

	c.logger.Debug("request completed",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}

// classifyTransportError maps a pre-response failure onto the error
// taxonomy. Deadline expiry wins over connection classification: a
// deadline that fires mid-dial still reports as a timeout.
func classifyTransportError(err error) *domain.APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout()
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return domain.ErrTimeout()
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ErrConnect()
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.ErrConnect()
	}
	return domain.ErrNetwork()
}

// serverError builds the server-reported APIError from a failing
// response. The body is parsed as JSON opportunistically; an
// unparseable body yields an empty raw body and the status-line
// fallback message.
func serverError(status int, body []byte) *domain.APIError {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		raw = map[string]any{}
	}
	message := ""
	if m, ok := raw["message"].(string); ok {
		message = m
	}
	return domain.ErrServer(status, message, raw)
}
