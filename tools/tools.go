package tools

import (
	"context"

	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// McpServerRegistrator is implemented by *server.MCPServer
type McpServerRegistrator interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

var _ McpServerRegistrator = (*server.MCPServer)(nil)

// ITool is a tool exposed to the agent host.
type ITool interface {
	// Name returns the name of the Tool, unique within the server.
	Name() string
	// Description returns the description of the tool shown to the calling agent.
	Description() string
	// Tool returns the MCP descriptor with the input schema and annotations.
	Tool() mcp.Tool
}

// Callback receives the tool lifecycle events
type Callback interface {
	OnToolStart(ctx context.Context, tool string, input string)
	OnToolEnd(ctx context.Context, tool string, input string, output string)
	OnToolError(ctx context.Context, tool string, input string, err error)
}

// Tool is a tool with typed input and output
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	// Handle is the MCP handler of the tool.
	// Expected failures are returned as EmptyResult, never as error.
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	RegisterMCP(registrator McpServerRegistrator)
}

// Register registers the tools with the MCP server
func Register(registrator McpServerRegistrator, list ...IMCPTool) {
	for _, tool := range list {
		tool.RegisterMCP(registrator)
	}
}

// EmptyResult returns the result with empty content,
// that is serialized as `{"content":[]}`
func EmptyResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{},
	}
}

// TextResult returns the result with a single text block
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// IsEmpty returns true if the result has no content
func IsEmpty(res *mcp.CallToolResult) bool {
	return res == nil || len(res.Content) == 0
}

// ResultText returns the concatenated text of the result
func ResultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var text string
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			text += tc.Text
		case *mcp.TextContent:
			text += tc.Text
		}
	}
	return text
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Title       string `json:"Title,omitempty" yaml:"Title,omitempty"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns YAML with the names and descriptions of the tools
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Title:       tool.Tool().Annotations.Title,
			Description: tool.Description(),
		})
	}
	return llmutils.ToYAML(d)
}
