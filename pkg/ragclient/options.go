package ragclient

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI-compatible Inkeep API
	DefaultBaseURL = "https://api.inkeep.com/v1"
	// DefaultModel is the Inkeep model that returns RAG documents
	DefaultModel = "inkeep-rag"
)

// Doer performs HTTP requests
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type options struct {
	token      string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient Doer
}

// Option is a functional option for the RAG client.
type Option func(*options)

// WithToken passes the Inkeep API key to the client.
func WithToken(token string) Option {
	return func(opts *options) {
		opts.token = token
	}
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithRequestTimeout limits the duration of one upstream request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}
