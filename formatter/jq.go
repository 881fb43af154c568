package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/itchyny/gojq"
)

type jqFormatter struct {
	expr   string
	query  *gojq.Code
	schema *jsonschema.Schema
}

// JQ creates a formatter that renders the result with a jq expression. The
// expression sees the object {"summary": ..., "output": ...}. String results
// are emitted as-is, other values as JSON, one per line.
//
//	formatter.JQ(`.output[] | "- \(.title)"`)
func JQ(expr string) (Formatter, error) {
	return newJQ(expr, nil)
}

// JQFor is like JQ but validates the result against the schema derived from
// output type T.
func JQFor[T any](expr string) (Formatter, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, fmt.Errorf("formatter: derive schema: %w", err)
	}
	return newJQ(expr, schema)
}

func newJQ(expr string, schema *jsonschema.Schema) (Formatter, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("formatter: invalid jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("formatter: compile jq expression %q: %w", expr, err)
	}
	return &jqFormatter{expr: expr, query: code, schema: schema}, nil
}

func (f *jqFormatter) OutputSchema() *jsonschema.Schema {
	return f.schema
}

func (f *jqFormatter) FormatResult(r Result) (string, error) {
	input, err := toInstance(r)
	if err != nil {
		return "", err
	}

	var lines []string
	iter := f.query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return "", fmt.Errorf("jq %q: %w", f.expr, err)
		}
		if s, ok := v.(string); ok {
			lines = append(lines, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal jq result: %w", err)
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n"), nil
}
