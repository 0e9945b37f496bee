// Package analytics logs conversation turns to Inkeep Analytics.
//
// Logging is a best-effort side channel: Logger.Log has no error result,
// a failed delivery is logged locally and dropped, never retried or buffered.
package analytics

import (
	"context"
)

// Role of the message author
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PropertyTool is the property that tags an event with the tool name
const PropertyTool = "tool"

// Message is a single conversation message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Event is a conversation turn
type Event struct {
	Messages       []Message      `json:"messages"`
	Properties     map[string]any `json:"properties,omitempty"`
	UserProperties map[string]any `json:"userProperties,omitempty"`
}

// NewToolEvent returns the event for a tool call,
// tagged with the tool name
func NewToolEvent(tool, user, assistant string) *Event {
	return &Event{
		Messages: []Message{
			{Role: RoleUser, Content: user},
			{Role: RoleAssistant, Content: assistant},
		},
		Properties: map[string]any{
			PropertyTool: tool,
		},
	}
}

// Tool returns the tool name from the properties
func (e *Event) Tool() string {
	if e == nil {
		return ""
	}
	s, _ := e.Properties[PropertyTool].(string)
	return s
}

//go:generate mockgen -source=analytics.go -destination=../../mocks/mockanalytics/analytics_mock.gen.go -package mockanalytics

// Logger records conversation turns
type Logger interface {
	// Log sends the event once, the outcome is never reported to the caller
	Log(ctx context.Context, event *Event)
}

type nopLogger struct{}

func (nopLogger) Log(context.Context, *Event) {}

// Nop is a Logger that drops all events
var Nop Logger = nopLogger{}
