// Package httptransport serves MCP over streamable HTTP.
package httptransport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/callbacks"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp/mcp/transport", "httptransport")

// HealthPath is the liveness endpoint
const HealthPath = "/healthz"

// HeaderRequestID is used as the tool call id when provided
const HeaderRequestID = callbacks.HeaderRequestID

// HTTPTransport serves the MCP endpoint for GET, POST and DELETE,
// and the health endpoint
type HTTPTransport struct {
	mcp       *server.MCPServer
	endpoint  string
	addr      string
	stateless bool

	lock       sync.Mutex
	streamable *server.StreamableHTTPServer
	handler    http.Handler
	httpServer *http.Server
}

// NewHTTPTransport creates a new HTTP transport that serves s on the specified endpoint
func NewHTTPTransport(s *server.MCPServer, endpoint string) *HTTPTransport {
	return &HTTPTransport{
		mcp:       s,
		endpoint:  endpoint,
		addr:      ":8080",
		stateless: true,
	}
}

// WithAddr sets the address to listen on
func (t *HTTPTransport) WithAddr(addr string) *HTTPTransport {
	t.addr = addr
	return t
}

// WithStateless enables or disables the session management
func (t *HTTPTransport) WithStateless(stateless bool) *HTTPTransport {
	t.stateless = stateless
	return t
}

// Handler returns the HTTP handler with the MCP and health endpoints
func (t *HTTPTransport) Handler() http.Handler {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.handler == nil {
		t.streamable = server.NewStreamableHTTPServer(t.mcp,
			server.WithEndpointPath(t.endpoint),
			server.WithStateLess(t.stateless),
			server.WithHTTPContextFunc(requestContext),
			server.WithLogger(xlogAdapter{}),
		)

		mux := http.NewServeMux()
		mux.Handle(t.endpoint, t.streamable)
		mux.HandleFunc(HealthPath, health)
		t.handler = mux
	}
	return t.handler
}

// Start listens on the address and serves until Close is called
func (t *HTTPTransport) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", t.addr)
	}
	return t.Serve(ctx, ln)
}

// Serve serves on the listener until Close is called
func (t *HTTPTransport) Serve(ctx context.Context, ln net.Listener) error {
	handler := t.Handler()

	t.lock.Lock()
	t.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	srv := t.httpServer
	t.lock.Unlock()

	logger.ContextKV(ctx, xlog.INFO,
		"status", "serving",
		"transport", "http",
		"addr", ln.Addr().String(),
		"endpoint", t.endpoint,
		"stateless", t.stateless,
	)

	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Close gracefully stops the server
func (t *HTTPTransport) Close(ctx context.Context) error {
	t.lock.Lock()
	srv := t.httpServer
	streamable := t.streamable
	t.lock.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	if streamable != nil {
		// stops the session sweeper
		err = errors.CombineErrors(err, streamable.Shutdown(ctx))
	}
	return err
}

func requestContext(ctx context.Context, r *http.Request) context.Context {
	id := r.Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	return callbacks.WithCallID(ctx, id)
}

func health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Only GET method is supported", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// xlogAdapter implements the logger of the streamable HTTP server
type xlogAdapter struct{}

func (xlogAdapter) Infof(format string, v ...any) {
	logger.KV(xlog.DEBUG, "msg", fmt.Sprintf(format, v...))
}

func (xlogAdapter) Errorf(format string, v ...any) {
	logger.KV(xlog.ERROR, "err", fmt.Sprintf(format, v...))
}
