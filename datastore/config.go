package datastore

import (
	"log/slog"
	"net/http"
	"time"
)

// Default client settings.
const (
	DefaultBaseURL        = "https://voidsdatastore.net/api/v1/"
	DefaultRequestTimeout = 10 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultPollTimeout    = 60 * time.Second
	DefaultMaxInterval    = 30 * time.Second
)

// Environment variables consulted by ConfigFromEnv, in order of precedence.
const (
	EnvAPIKey         = "VOIDS_DATASTORE_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
)

// PollStrategy selects how the delay between status polls evolves.
type PollStrategy string

const (
	// PollBackoff doubles the delay after every pending response, up to
	// PollPolicy.MaxInterval. This is the default.
	PollBackoff PollStrategy = "backoff"
	// PollFixed waits the same interval between all polls.
	PollFixed PollStrategy = "fixed"
)

// PollPolicy controls how a deferred request is polled to completion.
// A Retry-After header on a pending response overrides the computed delay
// for that iteration under either strategy.
type PollPolicy struct {
	// Strategy selects the delay progression. Empty means PollBackoff.
	Strategy PollStrategy
	// Interval is the initial delay between polls.
	Interval time.Duration
	// MaxInterval caps the delay under PollBackoff.
	MaxInterval time.Duration
	// Timeout bounds the total time spent waiting for resolution.
	Timeout time.Duration
}

func (p PollPolicy) withDefaults() PollPolicy {
	if p.Strategy == "" {
		p.Strategy = PollBackoff
	}
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultPollTimeout
	}
	return p
}

// Config holds the client configuration. Only APIKey is required; the zero
// value of every other field selects a documented default.
type Config struct {
	// APIKey is sent as the Authorization header value on every request.
	APIKey string
	// BaseURL is the root of the datastore API. It is normalized to end
	// with a single trailing slash. Defaults to DefaultBaseURL.
	BaseURL string
	// RequestTimeout bounds each individual HTTP request.
	RequestTimeout time.Duration
	// Poll is the default polling policy for deferred requests. It can be
	// overridden per call with request options.
	Poll PollPolicy
	// HTTPClient, when set, replaces the client's default http.Client.
	HTTPClient *http.Client
	// Logger, when set, receives debug logs of the request and polling
	// lifecycle. Nil disables logging.
	Logger *slog.Logger
}

// ConfigFromEnv returns a Config with the API key resolved from the
// environment, trying VOIDS_DATASTORE_API_KEY and then API_KEY. The getenv
// function is usually os.Getenv, but any lookup can be supplied. All other
// fields are left at their zero values.
func ConfigFromEnv(getenv func(string) string) Config {
	key := getenv(EnvAPIKey)
	if key == "" {
		key = getenv(EnvAPIKeyFallback)
	}
	return Config{APIKey: key}
}

// RequestOption adjusts the polling policy for a single call.
type RequestOption func(*PollPolicy)

// WithPollInterval overrides the initial delay between polls.
func WithPollInterval(d time.Duration) RequestOption {
	return func(p *PollPolicy) {
		p.Interval = d
	}
}

// WithPollTimeout overrides the total time to wait for resolution.
func WithPollTimeout(d time.Duration) RequestOption {
	return func(p *PollPolicy) {
		p.Timeout = d
	}
}

// WithPollPolicy replaces the entire polling policy.
func WithPollPolicy(pol PollPolicy) RequestOption {
	return func(p *PollPolicy) {
		*p = pol
	}
}
