// Package httpclient provides a shared HTTP client factory with a tuned
// transport, used by the CMS origin client.
package httpclient

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 100

	// DefaultMaxIdleConnsPerHost is the default maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10

	// DefaultIdleConnTimeout is the default idle connection timeout
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultResponseHeaderTimeout is the default response header timeout
	DefaultResponseHeaderTimeout = 30 * time.Second

	// DefaultTLSHandshakeTimeout is the default TLS handshake timeout
	DefaultTLSHandshakeTimeout = 10 * time.Second
)

// New creates an HTTP client with the given overall request timeout and a
// standardized transport. A timeout of zero falls back to DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
