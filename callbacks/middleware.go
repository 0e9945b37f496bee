package callbacks

import (
	"context"
	"time"

	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/effective-security/inkeep-mcp/pkg/metricskey"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HeaderRequestID carries the tool call id from the transport
const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

// WithCallID returns the context with the tool call id
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// CallID returns the tool call id, or empty string
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware returns the handler middleware that assigns a call id,
// bounds the call by maxDuration, records metrics and reports
// the lifecycle events to cb.
// maxDuration <= 0 means no limit.
func Middleware(cb tools.Callback, maxDuration time.Duration) server.ToolHandlerMiddleware {
	if cb == nil {
		cb = NewNoop()
	}
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name := req.Params.Name
			if CallID(ctx) == "" {
				ctx = WithCallID(ctx, uuid.NewString())
			}
			if maxDuration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, maxDuration)
				defer cancel()
			}

			started := time.Now()
			defer metricskey.PerfToolCall.MeasureSince(started, name)

			input := llmutils.ToJSON(req.GetArguments())
			cb.OnToolStart(ctx, name, input)

			res, err := next(ctx, req)
			if err != nil {
				metricskey.StatsToolCallsFailed.IncrCounter(1, name)
				cb.OnToolError(ctx, name, input, err)
				return res, err
			}

			if tools.IsEmpty(res) {
				metricskey.StatsToolCallsEmpty.IncrCounter(1, name)
			} else {
				metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
			}
			cb.OnToolEnd(ctx, name, input, tools.ResultText(res))
			return res, nil
		}
	}
}
