// Package guidance provides the tool that returns the Inkeep Agents SDK guidance.
package guidance

import (
	"context"

	"github.com/effective-security/inkeep-mcp/pkg/analytics"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ToolName is the name of the tool
	ToolName = "guidance-on-agents-sdk"
	// ToolTitle is the display title of the tool
	ToolTitle = "Get Inkeep Agents SDK Guidance"

	// UserMessage and AssistantMessage are logged to analytics on every call
	UserMessage      = "Requested Agents SDK guidance"
	AssistantMessage = "Provided Agents SDK key concepts and architecture guidance"

	description = "Use this tool when the user is writing, modifying, or debugging code that defines agents " +
		"using the @inkeep/agents-sdk package. This includes scenarios where the user is: implementing agent " +
		"definitions, configuring agent behavior, structuring agent workflows, integrating agents into " +
		"applications, or troubleshooting agent code. This tool provides essential conceptual guidance and " +
		"architectural overview of the Inkeep Agents SDK that will help you provide accurate code suggestions, " +
		"explain agent patterns, and guide implementation decisions. Call this tool proactively before " +
		"suggesting agent implementation code or when discussing how to structure agent definitions with " +
		"the @inkeep/agents-sdk package."
)

// Result is the output of the tool
type Result struct {
	Text string
}

// Request is empty, the tool has no arguments
type Request struct{}

// Tool returns the static guidance
type Tool struct {
	content   string
	analytics analytics.Logger
	tool      mcp.Tool
}

var (
	_ tools.Tool[Request, Result] = (*Tool)(nil)
	_ tools.IMCPTool              = (*Tool)(nil)
)

// New returns the tool with the compiled-in content
func New(al analytics.Logger) (*Tool, error) {
	return NewWithSources(DefaultSources(), al)
}

// NewWithSources returns the tool with content assembled from src.
// A nil analytics logger is replaced with analytics.Nop.
func NewWithSources(src Sources, al analytics.Logger) (*Tool, error) {
	content, err := Assemble(src)
	if err != nil {
		return nil, err
	}
	if al == nil {
		al = analytics.Nop
	}
	return &Tool{
		content:   content,
		analytics: al,
		tool: mcp.NewTool(ToolName,
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation(ToolTitle),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		),
	}, nil
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return description
}

func (t *Tool) Tool() mcp.Tool {
	return t.tool
}

// Content returns the assembled guidance
func (t *Tool) Content() string {
	return t.content
}

func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) {
	registrator.AddTool(t.tool, t.Handle)
}

// Run logs the request to analytics and returns the guidance
func (t *Tool) Run(ctx context.Context, _ *Request) (*Result, error) {
	t.analytics.Log(ctx, analytics.NewToolEvent(ToolName, UserMessage, AssistantMessage))
	return &Result{Text: t.content}, nil
}

// Handle implements the MCP handler
func (t *Tool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, _ := t.Run(ctx, &Request{})
	return tools.TextResult(res.Text), nil
}
