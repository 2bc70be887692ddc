// Package api implements the low-level Anvil transport: REST and GraphQL
// requests over HTTP with basic-auth credentials, per-environment rate
// limiting, and transport-level retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Anvil endpoint.
const DefaultBaseURL = "https://app.useanvil.com"

// Environment selects the per-key request ceiling Anvil enforces.
type Environment string

const (
	EnvironmentDevelopment Environment = "dev"
	EnvironmentProduction  Environment = "prod"
)

// Request ceilings per environment: calls allowed per rolling window.
// Requests over the ceiling are delayed in FIFO order, never dropped.
var environmentLimits = map[Environment]struct {
	calls  int
	window time.Duration
}{
	EnvironmentDevelopment: {calls: 2, window: time.Second},
	EnvironmentProduction:  {calls: 40, window: time.Second},
}

// Config configures the transport.
type Config struct {
	BaseURL     string
	APIKey      string
	Environment Environment
	HTTPClient  *http.Client
	Timeout     time.Duration
	Logger      hclog.Logger
	UserAgent   string

	// Retry behavior. MaxRetries 0 disables retries entirely.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client performs HTTP round trips against the Anvil API. It holds only
// immutable state plus a thread-safe limiter, so it is safe for concurrent
// use by multiple goroutines.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	limiter   *rate.Limiter
	retrier   *retrier
	logger    hclog.Logger
	userAgent string
}

// Response is a decoded transport-level result. Non-2xx statuses are not
// errors at this layer; logical failure is decided by the response mapper.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Header      http.Header
}

// NewClient builds a transport from cfg. The API key is required; it is
// sent as the basic-auth username on every request.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("apiKey cannot be empty")
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	env := cfg.Environment
	if env == "" {
		env = EnvironmentDevelopment
	}
	limit, ok := environmentLimits[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", env)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = cfg.Timeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	interval := limit.window / time.Duration(limit.calls)
	return &Client{
		baseURL:   u,
		apiKey:    cfg.APIKey,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Every(interval), limit.calls),
		retrier:   newRetrier(cfg.MaxRetries, cfg.RetryWaitMin, cfg.RetryWaitMax),
		logger:    logger,
		userAgent: cfg.UserAgent,
	}, nil
}

// RequestJSON sends a JSON-encoded REST request and returns the raw
// response. Path is absolute relative to the base URL, e.g.
// "/api/v1/fill/tmpl.pdf". Query may be nil.
func (c *Client) RequestJSON(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}
	return c.send(ctx, method, path, query, payload, "application/json")
}

// RequestBinary issues a GET for a binary resource (signed documents,
// rendered PDFs). The body is returned untouched along with the declared
// content type.
func (c *Client) RequestBinary(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.send(ctx, http.MethodGet, path, query, nil, "")
}

// RequestGraphQL posts a GraphQL document with its variables to /graphql.
func (c *Client) RequestGraphQL(ctx context.Context, document string, variables map[string]any) (*Response, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}
	return c.send(ctx, http.MethodPost, "/graphql", nil, payload, "application/json")
}

// RequestGraphQLMultipart posts a GraphQL document using the multipart
// request spec, streaming uploads alongside the operations document. The
// variables must already contain null placeholders at every upload path
// named in files.
func (c *Client) RequestGraphQLMultipart(ctx context.Context, document string, variables map[string]any, files []Upload) (*Response, error) {
	body, contentType, err := encodeMultipart(document, variables, files)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, "/graphql", nil, body, contentType)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*Response, error) {
	u := *c.baseURL
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	target := u.String()

	var resp *Response
	err := c.retrier.do(ctx, func() (retryable bool, err error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return false, fmt.Errorf("build request: %w", err)
		}
		req.SetBasicAuth(c.apiKey, "")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		httpResp, err := c.http.Do(req)
		if err != nil {
			// Network failures are retryable; the caller sees the last one.
			return true, err
		}
		defer httpResp.Body.Close()

		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return true, fmt.Errorf("read response body: %w", err)
		}

		c.logger.Debug("anvil request",
			"method", method,
			"path", path,
			"status", httpResp.StatusCode,
			"bytes", len(raw),
		)

		resp = &Response{
			StatusCode:  httpResp.StatusCode,
			Body:        raw,
			ContentType: httpResp.Header.Get("Content-Type"),
			Header:      httpResp.Header,
		}

		if httpResp.StatusCode == http.StatusTooManyRequests {
			c.waitRetryAfter(ctx, httpResp.Header)
			return true, nil
		}
		if httpResp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// waitRetryAfter honors an explicit Retry-After header before the next
// attempt. Errors and absent headers fall through to normal backoff.
func (c *Client) waitRetryAfter(ctx context.Context, header http.Header) {
	after := header.Get("Retry-After")
	if after == "" {
		return
	}
	secs, err := strconv.Atoi(after)
	if err != nil || secs <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(secs) * time.Second)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
