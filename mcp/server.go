// Package mcp assembles the MCP server: the tools allowed by the configuration,
// the handler middleware and the analytics side channel.
package mcp

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/callbacks"
	"github.com/effective-security/inkeep-mcp/pkg/analytics"
	"github.com/effective-security/inkeep-mcp/pkg/config"
	"github.com/effective-security/inkeep-mcp/pkg/ragclient"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/effective-security/inkeep-mcp/tools/guidance"
	"github.com/effective-security/inkeep-mcp/tools/searchdocs"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/server"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp", "mcp")

// ServerName is the name reported to MCP clients
const ServerName = "inkeep-mcp"

// Version is set at build time
var Version = "v0.0.0-dev"

// Instructions are advertised to MCP clients on initialize
const Instructions = "Use search-inkeep-docs to find extracts from the Inkeep documentation " +
	"and other public sources for a question. " +
	"Use guidance-on-agents-sdk before writing or reviewing code that defines agents " +
	"with the @inkeep/agents-sdk package."

// Option configures the Server
type Option func(*options)

type options struct {
	rag       ragclient.Client
	analytics analytics.Logger
	callback  tools.Callback
}

// WithRAGClient overrides the RAG client created from the configuration
func WithRAGClient(c ragclient.Client) Option {
	return func(o *options) {
		o.rag = c
	}
}

// WithAnalytics overrides the analytics logger created from the configuration
func WithAnalytics(l analytics.Logger) Option {
	return func(o *options) {
		o.analytics = l
	}
}

// WithCallback sets the tool lifecycle callback,
// by default the events are logged at DEBUG level
func WithCallback(cb tools.Callback) Option {
	return func(o *options) {
		o.callback = cb
	}
}

// Server is the MCP server with the registered tools
type Server struct {
	mcp   *server.MCPServer
	tools []tools.IMCPTool
}

// New returns the server with the tools allowed by cfg.
// Without the API key the missing key policy is applied,
// which is not an error.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.callback == nil {
		o.callback = callbacks.NewPackageLogger(logger)
	}
	if o.analytics == nil {
		o.analytics = analytics.New(cfg.AnalyticsKey(),
			analytics.WithBaseURL(cfg.Analytics.BaseURL),
			analytics.WithTimeout(cfg.Analytics.Timeout.D()),
		)
	}

	list, err := buildTools(cfg, &o)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(ServerName, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(Instructions),
		server.WithToolHandlerMiddleware(callbacks.Middleware(o.callback, cfg.MaxDuration.D())),
	)
	tools.Register(s, list...)

	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name())
	}
	logger.KV(xlog.INFO, "status", "registered", "tools", names)

	return &Server{
		mcp:   s,
		tools: list,
	}, nil
}

func buildTools(cfg *config.Config, o *options) ([]tools.IMCPTool, error) {
	if !cfg.HasAPIKey() && cfg.MissingKeyPolicy != config.PolicyDisableSearch {
		logger.KV(xlog.WARNING,
			"reason", "missing_api_key",
			"policy", config.PolicyDisableAll,
			"env", config.EnvAPIKey,
		)
		return nil, nil
	}

	var list []tools.IMCPTool

	if cfg.HasAPIKey() {
		rag := o.rag
		if rag == nil {
			c, err := ragclient.New(
				ragclient.WithToken(cfg.APIKey),
				ragclient.WithBaseURL(cfg.BaseURL),
				ragclient.WithModel(cfg.RAGModel),
				ragclient.WithRequestTimeout(cfg.RequestTimeout.D()),
			)
			if err != nil {
				return nil, err
			}
			rag = c
		}
		list = append(list, searchdocs.New(rag, o.analytics))
	} else {
		logger.KV(xlog.WARNING,
			"reason", "missing_api_key",
			"policy", config.PolicyDisableSearch,
			"disabled", searchdocs.ToolName,
		)
	}

	g, err := guidance.New(o.analytics)
	if err != nil {
		return nil, err
	}
	list = append(list, g)
	return list, nil
}

// MCPServer returns the underlying MCP server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Tools returns the registered tools
func (s *Server) Tools() []tools.IMCPTool {
	return s.tools
}

// Descriptors returns the registered tools as tools.ITool
func (s *Server) Descriptors() []tools.ITool {
	list := make([]tools.ITool, 0, len(s.tools))
	for _, t := range s.tools {
		list = append(list, t)
	}
	return list
}

// ServeStdio serves MCP over in and out until ctx is done or in is closed
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.KV(xlog.INFO, "status", "serving", "transport", "stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stdio server failed")
	}
	return nil
}
