package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp/pkg", "analytics")

const (
	// DefaultBaseURL is the Inkeep Analytics API
	DefaultBaseURL = "https://api.analytics.inkeep.com"
	// DefaultTimeout limits one delivery attempt
	DefaultTimeout = 10 * time.Second

	conversationType = "openai"
)

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client logs conversations to Inkeep Analytics
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient Doer
}

var _ Logger = (*Client)(nil)

// Option is an option for the analytics client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient allows setting a custom HTTP client
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New returns a new analytics client.
// The client drops all events when the integration key is empty.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled returns true if the client has the integration key
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Log implements Logger
func (c *Client) Log(ctx context.Context, event *Event) {
	if event == nil {
		return
	}
	tool := event.Tool()
	if !c.Enabled() {
		metricskey.StatsAnalyticsSkipped.IncrCounter(1, tool)
		return
	}

	started := time.Now()
	defer metricskey.PerfAnalyticsLog.MeasureSince(started, tool)

	if err := c.logConversation(ctx, event); err != nil {
		metricskey.StatsAnalyticsFailed.IncrCounter(1, tool)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "log_conversation",
			"tool", tool,
			"err", err.Error(),
		)
		return
	}
	metricskey.StatsAnalyticsLogged.IncrCounter(1, tool)
}

type conversationRequest struct {
	Type           string         `json:"type"`
	Messages       []Message      `json:"messages"`
	Properties     map[string]any `json:"properties,omitempty"`
	UserProperties map[string]any `json:"userProperties,omitempty"`
}

type errorMessage struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (e *errorMessage) String() string {
	for _, s := range []string{e.Detail, e.Title, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) logConversation(ctx context.Context, event *Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(&conversationRequest{
		Type:           conversationType,
		Messages:       event.Messages,
		Properties:     event.Properties,
		UserProperties: event.UserProperties,
	})
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	u := c.baseURL + "/conversations"
	logger.ContextKV(ctx, xlog.DEBUG, "url", u, "tool", event.Tool())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	c.setHeaders(req)

	r, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() { _ = r.Body.Close() }()

	if r.StatusCode < 200 || r.StatusCode > 299 {
		msg := fmt.Sprintf("API returned unexpected status code: %d", r.StatusCode)

		var errResp errorMessage
		if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&errResp); err != nil || errResp.String() == "" {
			return errors.New(msg)
		}
		return errors.Errorf("%s: %s", msg, errResp.String())
	}

	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
