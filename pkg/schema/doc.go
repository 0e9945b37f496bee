// Package schema reflects Go types into JSON schemas and `json_schema`
// response formats for schema-guided completions.
package schema
