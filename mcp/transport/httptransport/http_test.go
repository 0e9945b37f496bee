package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/effective-security/inkeep-mcp/callbacks"
	"github.com/effective-security/inkeep-mcp/mcp/transport/httptransport"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool("call-id"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return tools.TextResult(callbacks.CallID(ctx)), nil
	})
	return s
}

func post(t *testing.T, url, body string, headers map[string]string) (int, string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHandler(t *testing.T) {
	tr := httptransport.NewHTTPTransport(newServer(), "/mcp")
	ts := httptest.NewServer(tr.Handler())
	defer ts.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + httptransport.HealthPath)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, `{"status":"ok"}`, string(b))

		status, _ := post(t, ts.URL+httptransport.HealthPath, "{}", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, status)
	})

	t.Run("tools/list", func(t *testing.T) {
		status, body := post(t, ts.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, nil)
		assert.Equal(t, http.StatusOK, status)

		var res struct {
			Result mcp.ListToolsResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		require.Len(t, res.Result.Tools, 1)
		assert.Equal(t, "call-id", res.Result.Tools[0].Name)
	})

	t.Run("request id", func(t *testing.T) {
		status, body := post(t, ts.URL+"/mcp",
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"call-id","arguments":{}}}`,
			map[string]string{httptransport.HeaderRequestID: "req-42"})
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `"text":"req-42"`)
	})

	t.Run("invalid content type", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/mcp", "text/plain", bytes.NewBufferString("{}"))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	tr := httptransport.NewHTTPTransport(newServer(), "/mcp").WithStateless(true)

	done := make(chan error, 1)
	go func() {
		done <- tr.Serve(context.Background(), ln)
	}()

	url := "http://" + ln.Addr().String() + httptransport.HealthPath
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tr.Close(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
