package delivery

import (
	"net/http"
	"time"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultRetryBackoff = 100 * time.Millisecond
)

type options struct {
	baseURL      string
	httpClient   *http.Client
	retryBackoff time.Duration
}

type Option func(*options)

// WithBaseURL points a provider at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithRetryBackoff sets the delay before the first retry. Later retries double it.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) {
		o.retryBackoff = d
	}
}

func applyOptions(defaultBaseURL string, opts []Option) *options {
	o := &options{
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
