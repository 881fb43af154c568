package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// envelope is the typed shape of a Result, used to derive output schemas.
type envelope[T any] struct {
	Summary string `json:"summary"`
	Output  T      `json:"output"`
}

// SchemaFor derives the {summary, output} schema for output type T.
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	return jsonschema.For[envelope[T]](&jsonschema.ForOptions{})
}

type funcFormatter[T any] struct {
	schema *jsonschema.Schema
	fn     func(summary string, output T) (string, error)
}

// Func creates a formatter from a typed rendering function. The output schema
// is derived from T, and the step output is decoded into T before fn runs.
//
// Example:
//
//	f, err := formatter.Func(func(summary string, results []SearchResult) (string, error) {
//	    var b strings.Builder
//	    for _, r := range results {
//	        fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.URL)
//	    }
//	    return b.String(), nil
//	})
func Func[T any](fn func(summary string, output T) (string, error)) (Formatter, error) {
	if fn == nil {
		return nil, fmt.Errorf("formatter: nil function")
	}
	schema, err := SchemaFor[T]()
	if err != nil {
		return nil, fmt.Errorf("formatter: derive schema: %w", err)
	}
	return &funcFormatter[T]{schema: schema, fn: fn}, nil
}

// MustFunc is like Func but panics on error.
func MustFunc[T any](fn func(summary string, output T) (string, error)) Formatter {
	f, err := Func(fn)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *funcFormatter[T]) OutputSchema() *jsonschema.Schema {
	return f.schema
}

func (f *funcFormatter[T]) FormatResult(r Result) (string, error) {
	out, err := decodeOutput[T](r.Output)
	if err != nil {
		return "", err
	}
	return f.fn(r.Summary, out)
}

// decodeOutput converts an opaque output into T, directly when it already has
// that type and through JSON otherwise.
func decodeOutput[T any](output any) (T, error) {
	if v, ok := output.(T); ok {
		return v, nil
	}
	var v T
	data, err := json.Marshal(output)
	if err != nil {
		return v, fmt.Errorf("encode output: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode output: %w", err)
	}
	return v, nil
}
