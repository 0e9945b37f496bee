// Package ragschema defines the response of the Inkeep RAG endpoint.
//
// The schema is open: fields that are not described by Document or Response
// are kept in the Extra bag and written back in the order they were received.
package ragschema

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SchemaName is the name of the response format requested from the RAG endpoint
const SchemaName = "InkeepRAGResponseSchema"

// ErrInvalidDocument is returned when the payload does not match the schema
var ErrInvalidDocument = errors.New("invalid RAG response")

// Fields is an ordered bag of raw JSON values keyed by field name
type Fields = orderedmap.OrderedMap[string, json.RawMessage]

// NewFields returns an empty Fields bag
func NewFields() *Fields {
	return orderedmap.New[string, json.RawMessage]()
}

// Document is a citation returned by the RAG endpoint
type Document struct {
	// Type is the citation kind, for example `document` or `text`
	Type string `json:"type" jsonschema:"title=Type,description=The citation kind."`
	// Source is the open-ended citation source
	Source     map[string]any `json:"source" validate:"required" jsonschema:"title=Source,description=The source of the citation."`
	Title      *string        `json:"title,omitempty" jsonschema:"title=Title,description=The title of the referenced page."`
	Context    *string        `json:"context,omitempty" jsonschema:"title=Context,description=Additional context for the citation."`
	RecordType *string        `json:"record_type,omitempty" jsonschema:"title=Record Type,description=The type of the Inkeep record."`
	URL        *string        `json:"url,omitempty" jsonschema:"title=URL,description=The URL of the referenced page."`

	// Extra holds the fields that are not described above
	Extra *Fields `json:"-" validate:"-"`
}

// Response is the structured payload of the RAG endpoint
type Response struct {
	Content []*Document `json:"content" validate:"required,dive,required" jsonschema:"title=Content,description=The documents relevant to the query."`

	// Extra holds the fields that are not described above
	Extra *Fields `json:"-" validate:"-"`
}

var validate = validator.New()

// Parse decodes and validates the payload
func Parse(data []byte) (*Response, error) {
	res := new(Response)
	if err := json.Unmarshal(data, res); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode RAG response"), ErrInvalidDocument)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Validate returns ErrInvalidDocument when a required field is missing
func (r *Response) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to validate RAG response"), ErrInvalidDocument)
	}
	return nil
}

// GetTitle returns the title or empty string
func (d *Document) GetTitle() string {
	if d == nil || d.Title == nil {
		return ""
	}
	return *d.Title
}

// GetURL returns the URL or empty string
func (d *Document) GetURL() string {
	if d == nil || d.URL == nil {
		return ""
	}
	return *d.URL
}

// Get returns the raw value of the field that is not described by Document
func (d *Document) Get(field string) (json.RawMessage, bool) {
	if d == nil || d.Extra == nil {
		return nil, false
	}
	return d.Extra.Get(field)
}

// UnmarshalJSON decodes the known fields by their exact names and keeps the rest in Extra.
// An optional field with an explicit null stays in Extra and is written back as null.
func (d *Document) UnmarshalJSON(data []byte) error {
	all, err := decodeFields(data)
	if err != nil {
		return err
	}

	var typ *string
	if err = take(all, "type", &typ); err != nil {
		return err
	}
	if typ == nil {
		return errors.Errorf("document type is required")
	}

	doc := Document{Type: *typ}
	if err = take(all, "source", &doc.Source); err != nil {
		return err
	}
	for _, f := range []struct {
		key string
		val **string
	}{
		{"title", &doc.Title},
		{"context", &doc.Context},
		{"record_type", &doc.RecordType},
		{"url", &doc.URL},
	} {
		if err = takeOptional(all, f.key, f.val); err != nil {
			return err
		}
	}

	if all.Len() > 0 {
		doc.Extra = all
	}
	*d = doc
	return nil
}

// MarshalJSON writes the known fields followed by Extra
func (d Document) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, any]()
	out.Set("type", d.Type)
	out.Set("source", d.Source)
	setOptional(out, "title", d.Title)
	setOptional(out, "context", d.Context)
	setOptional(out, "record_type", d.RecordType)
	setOptional(out, "url", d.URL)
	appendExtra(out, d.Extra)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the known fields by their exact names and keeps the rest in Extra
func (r *Response) UnmarshalJSON(data []byte) error {
	all, err := decodeFields(data)
	if err != nil {
		return err
	}

	res := Response{}
	if err = take(all, "content", &res.Content); err != nil {
		return err
	}
	if all.Len() > 0 {
		res.Extra = all
	}
	*r = res
	return nil
}

// MarshalJSON writes the known fields followed by Extra
func (r Response) MarshalJSON() ([]byte, error) {
	content := r.Content
	if content == nil {
		content = []*Document{}
	}
	out := orderedmap.New[string, any]()
	out.Set("content", content)
	appendExtra(out, r.Extra)
	return json.Marshal(out)
}

// decodeNumbers keeps numbers as json.Number to write them back unchanged
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return errors.WithStack(dec.Decode(v))
}

// decodeFields returns all fields of the object in the received order,
// the keys are matched exactly
func decodeFields(data []byte) (*Fields, error) {
	all := NewFields()
	if err := all.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrap(err, "expected JSON object")
	}
	return all, nil
}

// take removes the field from the bag and decodes its value into v
func take(all *Fields, key string, v any) error {
	raw, ok := all.Get(key)
	if !ok {
		return nil
	}
	all.Delete(key)
	return errors.Wrapf(decodeNumbers(raw, v), "invalid %s", key)
}

// takeOptional is take that leaves an explicit null in the bag
func takeOptional(all *Fields, key string, v **string) error {
	raw, ok := all.Get(key)
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return take(all, key, v)
}

func setOptional(out *orderedmap.OrderedMap[string, any], key string, val *string) {
	if val != nil {
		out.Set(key, *val)
	}
}

func appendExtra(out *orderedmap.OrderedMap[string, any], extra *Fields) {
	if extra == nil {
		return
	}
	for pair := extra.Oldest(); pair != nil; pair = pair.Next() {
		if _, exists := out.Get(pair.Key); !exists {
			out.Set(pair.Key, pair.Value)
		}
	}
}
