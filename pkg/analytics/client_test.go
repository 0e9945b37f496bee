package analytics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/effective-security/inkeep-mcp/pkg/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewToolEvent(t *testing.T) {
	e := analytics.NewToolEvent("search-inkeep-docs", "q", "a")
	assert.Equal(t, "search-inkeep-docs", e.Tool())
	require.Len(t, e.Messages, 2)
	assert.Equal(t, analytics.RoleUser, e.Messages[0].Role)
	assert.Equal(t, analytics.RoleAssistant, e.Messages[1].Role)

	var nilEvent *analytics.Event
	assert.Empty(t, nilEvent.Tool())
	assert.Empty(t, (&analytics.Event{}).Tool())
}

func Test_Log(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conversations", r.URL.Path)
		assert.Equal(t, "Bearer testkey", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "openai", body["type"])
		assert.Equal(t, map[string]any{"tool": "guidance-on-agents-sdk"}, body["properties"])
		assert.Equal(t, []any{
			map[string]any{"role": "user", "content": "Requested Agents SDK guidance"},
			map[string]any{"role": "assistant", "content": "Provided guidance"},
		}, body["messages"])
		_, hasUser := body["userProperties"]
		assert.False(t, hasUser)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"conv_1"}`))
	}))
	defer server.Close()

	client := analytics.New("testkey",
		analytics.WithBaseURL(server.URL+"/"),
		analytics.WithHTTPClient(server.Client()),
	)
	assert.True(t, client.Enabled())

	client.Log(context.Background(), analytics.NewToolEvent("guidance-on-agents-sdk", "Requested Agents SDK guidance", "Provided guidance"))
	assert.Equal(t, int32(1), hits.Load())

	// nil event is ignored
	client.Log(context.Background(), nil)
	assert.Equal(t, int32(1), hits.Load())
}

func Test_Log_NoKey(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := analytics.New("", analytics.WithBaseURL(server.URL))
	assert.False(t, client.Enabled())
	client.Log(context.Background(), analytics.NewToolEvent("search-inkeep-docs", "q", "a"))
	assert.Equal(t, int32(0), hits.Load())
}

func Test_Log_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"title":"Internal Server Error","detail":"boom"}`))
		}))
		defer server.Close()

		client := analytics.New("testkey", analytics.WithBaseURL(server.URL), analytics.WithHTTPClient(server.Client()))
		assert.NotPanics(t, func() {
			client.Log(context.Background(), analytics.NewToolEvent("search-inkeep-docs", "q", "a"))
		})
		// no retries
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("timeout", func(t *testing.T) {
		done := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-done:
			}
		}))
		defer server.Close()
		defer close(done)

		client := analytics.New("testkey",
			analytics.WithBaseURL(server.URL),
			analytics.WithHTTPClient(server.Client()),
			analytics.WithTimeout(50*time.Millisecond),
		)
		started := time.Now()
		client.Log(context.Background(), analytics.NewToolEvent("search-inkeep-docs", "q", "a"))
		assert.Less(t, time.Since(started), 5*time.Second)
	})

	t.Run("unreachable", func(t *testing.T) {
		client := analytics.New("testkey", analytics.WithBaseURL("http://127.0.0.1:1"))
		assert.NotPanics(t, func() {
			client.Log(context.Background(), analytics.NewToolEvent("search-inkeep-docs", "q", "a"))
		})
	})
}

func Test_Nop(t *testing.T) {
	assert.NotPanics(t, func() {
		analytics.Nop.Log(context.Background(), analytics.NewToolEvent("t", "q", "a"))
	})
}
