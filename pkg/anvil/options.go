package anvil

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/anvilco/go-anvil/pkg/api"
)

// Options configures the client behavior.
type Options struct {
	baseURL      string
	environment  api.Environment
	timeout      time.Duration
	httpClient   *http.Client
	logger       hclog.Logger
	userAgent    string
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

func defaultOptions() *Options {
	return &Options{
		baseURL:      api.DefaultBaseURL,
		environment:  api.EnvironmentDevelopment,
		timeout:      30 * time.Second,
		maxRetries:   3,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 30 * time.Second,
		userAgent:    "go-anvil/" + Version,
	}
}

// Option configures the client.
type Option func(*Options)

// WithBaseURL overrides the API endpoint. Useful for testing against a
// stub server.
func WithBaseURL(u string) Option {
	return func(o *Options) {
		o.baseURL = u
	}
}

// WithEnvironment selects the rate-limit profile for the API key.
// Development keys allow far fewer requests per second than production
// keys. Default is the development profile.
func WithEnvironment(env api.Environment) Option {
	return func(o *Options) {
		o.environment = env
	}
}

// WithTimeout sets the HTTP request timeout. Ignored when a custom HTTP
// client is supplied.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.timeout = d
	}
}

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Options) {
		o.httpClient = hc
	}
}

// WithLogger enables structured debug logging of requests.
func WithLogger(l hclog.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		o.userAgent = ua
	}
}

// WithMaxRetries sets the maximum number of transport-level retry
// attempts for network failures, 5xx responses, and rate-limit responses.
// Default is 3. Set to 0 to disable retries.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.maxRetries = n
	}
}

// WithRetryWait sets the min/max retry backoff duration.
// Default is 1s min, 30s max.
func WithRetryWait(min, max time.Duration) Option {
	return func(o *Options) {
		o.retryWaitMin = min
		o.retryWaitMax = max
	}
}
