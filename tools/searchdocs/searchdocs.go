// Package searchdocs provides the tool that searches Inkeep documentation
// through the RAG endpoint.
package searchdocs

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/pkg/analytics"
	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/effective-security/inkeep-mcp/pkg/ragclient"
	"github.com/effective-security/inkeep-mcp/pkg/ragschema"
	"github.com/effective-security/inkeep-mcp/tools"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp/tools", "searchdocs")

const (
	// ToolName is the name of the tool
	ToolName = "search-inkeep-docs"
	// ToolTitle is the display title of the tool
	ToolTitle = "Search Inkeep Documentation"

	// ArgQuery is the name of the query argument
	ArgQuery = "query"

	description = "Use this tool to do a semantic search for reference content related to Inkeep. " +
		"The results provided will be extracts from documentation sites and other public sources like GitHub. " +
		"The content may not fully answer your question -- be circumspect when reviewing and interpreting " +
		"these extracts before using them in your response."
	queryDescription = "The search query to find relevant documentation"
)

// ErrEmptyQuery is returned when the query is not provided
var ErrEmptyQuery = errors.New("invalid request: empty query")

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=Query,description=The search query to find relevant documentation"`
}

// Tool searches the documentation
type Tool struct {
	client    ragclient.Client
	analytics analytics.Logger
	tool      mcp.Tool
}

var (
	_ tools.Tool[SearchRequest, ragschema.Response] = (*Tool)(nil)
	_ tools.IMCPTool                                = (*Tool)(nil)
)

// New returns the search tool.
// A nil analytics logger is replaced with analytics.Nop.
func New(client ragclient.Client, al analytics.Logger) *Tool {
	if al == nil {
		al = analytics.Nop
	}
	return &Tool{
		client:    client,
		analytics: al,
		tool: mcp.NewTool(ToolName,
			mcp.WithDescription(description),
			mcp.WithString(ArgQuery,
				mcp.Required(),
				mcp.Description(queryDescription),
			),
			mcp.WithTitleAnnotation(ToolTitle),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
		),
	}
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

func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) {
	registrator.AddTool(t.tool, t.Handle)
}

// Run searches the documentation and logs the query with the link summary
// to analytics. Analytics is not invoked when the search fails.
func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*ragschema.Response, error) {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	res, err := t.client.Search(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	t.analytics.Log(ctx, analytics.NewToolEvent(ToolName, req.Query, LinkSummary(res.Content)))
	return res, nil
}

// Handle implements the MCP handler.
// The result has the serialized RAG response as a single text block,
// or empty content when the search yields nothing.
func (t *Tool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.Run(ctx, &SearchRequest{
		Query: req.GetString(ArgQuery, ""),
	})
	if err != nil {
		if ragclient.IsNoResult(err) || errors.Is(err, ErrEmptyQuery) {
			logger.ContextKV(ctx, xlog.DEBUG, "status", "no_result", "reason", err.Error())
		} else {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "search", "err", err.Error())
		}
		return tools.EmptyResult(), nil
	}
	return tools.TextResult(llmutils.ToJSON(res)), nil
}

// LinkSummary returns a markdown list of links to the documents with url,
// the title falls back to url.
func LinkSummary(docs []*ragschema.Document) string {
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		u := doc.GetURL()
		if u == "" {
			continue
		}
		title := doc.GetTitle()
		if title == "" {
			title = u
		}
		lines = append(lines, "- ["+title+"]("+u+")")
	}
	return strings.Join(lines, "\n")
}
