package qbittorrent

import (
	"net/http"
	"time"

	"github.com/sendarr/sendarr/telemetry"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	sessionTTL time.Duration
	userAgent  string
	httpClient *http.Client
	reporter   telemetry.Reporter
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:    30 * time.Second,
		sessionTTL: DefaultSessionTTL,
		reporter:   telemetry.NopReporter(),
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithSessionTTL sets how long a session cookie is reused before the
// client logs in again.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *clientOptions) {
		if ttl > 0 {
			o.sessionTTL = ttl
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithReporter sets the error reporter that receives internal failure
// detail.
func WithReporter(reporter telemetry.Reporter) Option {
	return func(o *clientOptions) {
		if reporter != nil {
			o.reporter = reporter
		}
	}
}
