// Package localtransport invokes the MCP server in process,
// without a network or stdio connection.
package localtransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/callbacks"
	"github.com/mark3labs/mcp-go/server"
)

// McpProxyRequest is a JSON-RPC message with the request headers
type McpProxyRequest struct {
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// McpProxyResponse is a JSON-RPC response, Body is empty for notifications
type McpProxyResponse struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Handler is an interface for handling MCP requests using local transport or proxy
type Handler interface {
	HandleMCP(ctx context.Context, req *McpProxyRequest) (*McpProxyResponse, error)
}

// Transport dispatches the messages to the MCP server
type Transport struct {
	server *server.MCPServer
}

var _ Handler = (*Transport)(nil)

// New returns the transport for the server
func New(s *server.MCPServer) *Transport {
	return &Transport{server: s}
}

// HandleMCP implements Handler
func (t *Transport) HandleMCP(ctx context.Context, req *McpProxyRequest) (*McpProxyResponse, error) {
	if req == nil || len(req.Body) == 0 {
		return nil, errors.New("empty request")
	}

	if id := header(req.Headers, callbacks.HeaderRequestID); id != "" {
		ctx = callbacks.WithCallID(ctx, id)
	}

	resp := t.server.HandleMessage(ctx, json.RawMessage(req.Body))
	if resp == nil {
		// notification
		return &McpProxyResponse{Status: http.StatusAccepted}, nil
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response")
	}
	return &McpProxyResponse{
		Status: http.StatusOK,
		Body:   body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

// header returns the value of the header, the name is case-insensitive
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == name {
			return v
		}
	}
	return ""
}
