package formatter

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

type yamlFormatter[T any] struct {
	schema *jsonschema.Schema
}

// YAML creates a formatter that renders the summary followed by the output as
// a YAML document. Structured output tends to read better to a model as YAML
// than as dense JSON.
func YAML[T any]() (Formatter, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, fmt.Errorf("formatter: derive schema: %w", err)
	}
	return &yamlFormatter[T]{schema: schema}, nil
}

func (f *yamlFormatter[T]) OutputSchema() *jsonschema.Schema {
	return f.schema
}

func (f *yamlFormatter[T]) FormatResult(r Result) (string, error) {
	out, err := decodeOutput[T](r.Output)
	if err != nil {
		return "", err
	}
	data, err := yaml.MarshalWithOptions(out, yaml.UseJSONMarshaler())
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}

	var b strings.Builder
	if r.Summary != "" {
		b.WriteString(r.Summary)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimRight(string(data), "\n"))
	return b.String(), nil
}
