// Package ragclient calls the OpenAI-compatible Inkeep RAG endpoint and
// decodes its schema-guided output.
package ragclient

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/effective-security/inkeep-mcp/pkg/metricskey"
	"github.com/effective-security/inkeep-mcp/pkg/ragschema"
	"github.com/effective-security/inkeep-mcp/pkg/schema"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp/pkg", "ragclient")

var (
	// ErrEmptyResponse is returned when the endpoint returns no structured value.
	ErrEmptyResponse = errors.New("empty response")
	// ErrRefusal is returned when the endpoint refuses to answer.
	ErrRefusal = errors.New("request refused")
)

//go:generate mockgen -source=client.go -destination=../../mocks/mockragclient/client_mock.gen.go -package mockragclient

// Client searches the RAG endpoint
type Client interface {
	// Search returns the documents relevant to the query.
	// ErrEmptyResponse and ErrRefusal indicate that the endpoint
	// did not return a structured value.
	Search(ctx context.Context, query string) (*ragschema.Response, error)
}

// OpenAIClient implements Client with the OpenAI chat completions API
type OpenAIClient struct {
	api    openai.Client
	model  string
	format openai.ChatCompletionNewParamsResponseFormatUnion
}

var _ Client = (*OpenAIClient)(nil)

// New returns a new RAG client
func New(opts ...Option) (*OpenAIClient, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.token == "" {
		return nil, errors.New("missing the Inkeep API key")
	}

	rf, err := schema.NewNamedResponseFormat(ragschema.SchemaName, reflect.TypeOf(ragschema.Response{}), false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create response format")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(o.token),
		option.WithBaseURL(values.StringsCoalesce(o.baseURL, DefaultBaseURL)),
		// one attempt per tool call
		option.WithMaxRetries(0),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	if o.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(o.timeout))
	}

	return &OpenAIClient{
		api:   openai.NewClient(reqOpts...),
		model: values.StringsCoalesce(o.model, DefaultModel),
		format: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   rf.JSONSchema.Name,
					Strict: openai.Bool(rf.JSONSchema.Strict),
					Schema: rf.JSONSchema.Schema,
				},
			},
		},
	}, nil
}

// Model returns the name of the RAG model
func (c *OpenAIClient) Model() string {
	return c.model
}

// Search implements Client
func (c *OpenAIClient) Search(ctx context.Context, query string) (*ragschema.Response, error) {
	started := time.Now()
	defer metricskey.PerfRAGRequest.MeasureSince(started, c.model)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(query),
		},
		ResponseFormat: c.format,
	})
	if err != nil {
		metricskey.StatsRAGRequestsFailed.IncrCounter(1, c.model)
		return nil, errors.Wrap(err, "failed to call RAG endpoint")
	}
	metricskey.StatsRAGRequestsSucceeded.IncrCounter(1, c.model)

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "refused",
			"model", c.model,
			"refusal", msg.Refusal,
		)
		return nil, errors.Wrap(ErrRefusal, msg.Refusal)
	}

	content := llmutils.TrimBackticks(strings.TrimSpace(msg.Content))
	if content == "" {
		return nil, ErrEmptyResponse
	}

	res, err := ragschema.Parse(llmutils.CleanJSON([]byte(content)))
	if err != nil {
		metricskey.StatsRAGParseErrors.IncrCounter(1, c.model)
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"model", c.model,
		"documents", len(res.Content),
	)
	return res, nil
}

// IsNoResult returns true if the error indicates
// that the endpoint returned no structured value
func IsNoResult(err error) bool {
	return errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrRefusal)
}
