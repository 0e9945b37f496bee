package guidance

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

const (
	// SDKPackage is the package the guidance describes
	SDKPackage = "@inkeep/agents-sdk"

	// ConceptsTag delimits the narrative guidance
	ConceptsTag = "agents_sdk_key_concepts"
	// TypesTag delimits the type definitions
	TypesTag = "agents_sdk_type_definitions"
)

var (
	//go:embed content/concepts.md
	conceptsMD string
	//go:embed content/types.d.ts
	typesDTS string
	//go:embed content/guidance.tmpl
	guidanceTmpl string
)

// Sources is the input of the guidance content
type Sources struct {
	Package  string
	Concepts string
	Types    string
}

// DefaultSources returns the compiled-in sources
func DefaultSources() Sources {
	return Sources{
		Package:  SDKPackage,
		Concepts: conceptsMD,
		Types:    typesDTS,
	}
}

// Assemble returns the guidance text with the concepts and type definitions
// under their delimiting markers.
func Assemble(src Sources) (string, error) {
	if strings.TrimSpace(src.Concepts) == "" {
		return "", errors.New("guidance concepts are empty")
	}
	if strings.TrimSpace(src.Types) == "" {
		return "", errors.New("guidance type definitions are empty")
	}

	tmpl, err := template.New("guidance").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(guidanceTmpl)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse guidance template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Package":     src.Package,
		"Concepts":    src.Concepts,
		"Types":       src.Types,
		"ConceptsTag": ConceptsTag,
		"TypesTag":    TypesTag,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render guidance")
	}
	return buf.String(), nil
}
