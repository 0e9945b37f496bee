// Package llmutils cleans up model output and formats values for tool results and the CLI.
package llmutils

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "```"

// CleanJSON returns the bytes from the first opening to the last closing
// bracket or brace, a completion may reply with `Here you go: {json}`.
// Input without JSON delimiters is returned as is.
func CleanJSON(bs []byte) []byte {
	if start := bytes.IndexAny(bs, "{["); start > 0 {
		bs = bs[start:]
	}
	if end := bytes.LastIndexAny(bs, "}]"); end >= 0 {
		bs = bs[:end+1]
	}
	return bs
}

// TrimBackticks returns the body of a fenced block, like ```json ... ```,
// or the text as is when it has no fence.
func TrimBackticks(text string) string {
	_, body, found := strings.Cut(text, fence)
	if !found {
		return text
	}
	// skip the language tag, unless the body starts on the fence line
	if i := strings.IndexAny(body, "\n{["); i >= 0 && body[i] == '\n' {
		body = body[i+1:]
	}
	if end := strings.LastIndex(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// JSONIndent indents the JSON document, invalid JSON gives an empty string
func JSONIndent(body string) string {
	var buf bytes.Buffer
	_ = json.Indent(&buf, []byte(body), "", "\t")
	return buf.String()
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func ToYAML(val any) string {
	y, _ := yaml.Marshal(val)
	return string(y)
}
