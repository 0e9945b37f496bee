package localtransport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// Client is a MCP client over a Handler
type Client struct {
	handler Handler
	headers map[string]string
	counter atomic.Int64

	lock        sync.Mutex
	initialized bool
}

// NewClient returns the client for the handler
func NewClient(handler Handler) *Client {
	return &Client{
		handler: handler,
		headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// Initialize performs the initialize handshake,
// it is called by ListTools and CallTool if needed
func (c *Client) Initialize(ctx context.Context) (*mcp.InitializeResult, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	params := map[string]any{
		"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
		"clientInfo": mcp.Implementation{
			Name:    "inkeep-mcp-local",
			Version: "1.0.0",
		},
		"capabilities": mcp.ClientCapabilities{},
	}

	var res mcp.InitializeResult
	if err := c.call(ctx, string(mcp.MethodInitialize), params, &res); err != nil {
		return nil, err
	}
	if err := c.notify(ctx, "notifications/initialized"); err != nil {
		return nil, err
	}
	c.initialized = true
	return &res, nil
}

func (c *Client) ensureInitialized(ctx context.Context) error {
	c.lock.Lock()
	done := c.initialized
	c.lock.Unlock()
	if done {
		return nil
	}
	_, err := c.Initialize(ctx)
	return err
}

// ListTools returns the registered tools
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	var res mcp.ListToolsResult
	if err := c.call(ctx, string(mcp.MethodToolsList), map[string]any{}, &res); err != nil {
		return nil, err
	}
	return res.Tools, nil
}

// CallTool invokes the tool and returns the raw result,
// that is the JSON serialized mcp.CallToolResult
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	var res json.RawMessage
	err := c.call(ctx, string(mcp.MethodToolsCall), map[string]any{
		"name":      name,
		"arguments": args,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) send(ctx context.Context, msg *rpcRequest) (*McpProxyResponse, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	resp, err := c.handler.HandleMCP(ctx, &McpProxyRequest{
		Body:    body,
		Headers: c.headers,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) notify(ctx context.Context, method string) error {
	resp, err := c.send(ctx, &rpcRequest{JSONRPC: mcp.JSONRPC_VERSION, Method: method})
	if err != nil {
		return err
	}
	if resp.Status != http.StatusAccepted && resp.Status != http.StatusOK {
		return errors.Errorf("server returned error: %d", resp.Status)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	id := c.counter.Add(1)
	resp, err := c.send(ctx, &rpcRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      &id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return errors.Errorf("server returned error: %d", resp.Status)
	}

	var rpc rpcResponse
	if err := json.Unmarshal(resp.Body, &rpc); err != nil {
		return errors.Wrap(err, "received invalid response")
	}
	if rpc.Error != nil {
		return errors.Errorf("%s failed: %d: %s", method, rpc.Error.Code, rpc.Error.Message)
	}
	if err := json.Unmarshal(rpc.Result, result); err != nil {
		return errors.Wrapf(err, "failed to decode %s result", method)
	}
	return nil
}
