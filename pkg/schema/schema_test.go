package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/effective-security/inkeep-mcp/pkg/llmutils"
	"github.com/effective-security/inkeep-mcp/pkg/schema"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchRequest struct {
	Query string `json:"query" jsonschema:"description=The search query to find relevant documentation"`
}

type citation struct {
	Type   string         `json:"type" jsonschema:"title=Type,description=Citation kind"`
	Source map[string]any `json:"source" jsonschema:"title=Source"`
	Title  *string        `json:"title,omitempty" jsonschema:"title=Title"`
	URL    *string        `json:"url,omitempty" jsonschema:"title=URL"`
}

type citations struct {
	Content []citation `json:"content" jsonschema:"title=Content"`
	Primary *citation  `json:"primary,omitempty" jsonschema:"title=Primary"`
}

func TestSchema(t *testing.T) {
	t.Parallel()

	t.Run("Request", func(t *testing.T) {
		t.Parallel()
		s, err := schema.New(reflect.TypeOf(searchRequest{}))
		require.NoError(t, err)
		exp := `{
	"properties": {
		"query": {
			"type": "string",
			"description": "The search query to find relevant documentation"
		}
	},
	"type": "object",
	"required": [
		"query"
	]
}`
		assert.Equal(t, exp, s.String())
		assert.Equal(t, exp, llmutils.ToJSONIndent(s.Parameters))

		var sc jsonschema.Schema
		err = json.Unmarshal([]byte(exp), &sc)
		require.NoError(t, err)
		assert.Equal(t, 1, sc.Properties.Len())
	})

	t.Run("Nested", func(t *testing.T) {
		t.Parallel()
		s, err := schema.New(reflect.TypeOf(citations{}))
		require.NoError(t, err)

		assert.Equal(t, "object", s.Parameters.Type)
		assert.Equal(t, []string{"content"}, s.Parameters.Required)

		content, ok := s.Parameters.Properties.Get("content")
		require.True(t, ok)
		assert.Equal(t, "array", content.Type)
		require.NotNil(t, content.Items)
		assert.Empty(t, content.Items.Ref)
		assert.Equal(t, []string{"type", "source"}, content.Items.Required)

		src, ok := content.Items.Properties.Get("source")
		require.True(t, ok)
		assert.Equal(t, "object", src.Type)

		primary, ok := s.Parameters.Properties.Get("primary")
		require.True(t, ok)
		assert.Empty(t, primary.Ref)
		assert.Equal(t, "object", primary.Type)
	})

	t.Run("Cached", func(t *testing.T) {
		t.Parallel()
		s1, err := schema.New(reflect.TypeOf(citation{}))
		require.NoError(t, err)
		s2, err := schema.New(reflect.TypeOf(citation{}))
		require.NoError(t, err)
		assert.Same(t, s1, s2)
	})
}

func TestSchemaNewResponseFormat(t *testing.T) {
	t.Parallel()

	t.Run("Strict", func(t *testing.T) {
		t.Parallel()
		rf, err := schema.NewNamedResponseFormat("searchRequest", reflect.TypeOf(searchRequest{}), true)
		require.NoError(t, err)

		exp := `{
	"type": "json_schema",
	"json_schema": {
		"name": "searchRequest",
		"strict": true,
		"schema": {
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query to find relevant documentation"
				}
			},
			"additionalProperties": false,
			"required": [
				"query"
			]
		}
	}
}`
		assert.Equal(t, exp, llmutils.ToJSONIndent(rf))
	})

	t.Run("Open", func(t *testing.T) {
		t.Parallel()
		rf, err := schema.NewNamedResponseFormat("Citations", reflect.TypeOf(citations{}), false)
		require.NoError(t, err)

		assert.Equal(t, "json_schema", rf.Type)
		assert.Equal(t, "Citations", rf.JSONSchema.Name)
		assert.False(t, rf.JSONSchema.Strict)

		root := rf.JSONSchema.Schema
		assert.Nil(t, root.AdditionalProperties)
		assert.Contains(t, root.Required, "content")

		item := root.Properties["content"].Items
		require.NotNil(t, item)
		assert.Nil(t, item.AdditionalProperties)
		assert.Contains(t, item.Required, "type")
		assert.Contains(t, item.Required, "source")
		assert.NotContains(t, item.Required, "url")
		assert.Contains(t, item.Properties, "title")
	})
}
