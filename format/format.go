// Package format turns raw model output into structured action requests.
//
// A [Format] does two things: it describes the response syntax the model must
// follow (rendered into the system message), and it parses whatever the model
// answered into a [Parsed] record holding the optional action identifier, the
// free-text remainder, and the action parameters.
//
// Two formats are provided:
//
//   - [JSON]: the whole response is one JSON object
//   - [FlexibleJSON]: free-form reasoning followed by one JSON object
//
// Both repair slightly malformed JSON (trailing commas, missing quotes or
// braces). [JSON] gives up with a [*ParseError]; [FlexibleJSON] treats a
// response without a usable object as a thought.
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Reserved keys of the JSON object produced by the model.
const (
	ActionKey   = "action"
	FreeTextKey = "_freeText"
)

// Format parses model output and documents the syntax it expects.
type Format interface {
	// Description explains the response syntax to the model.
	Description() string

	// Example renders a well-formed request for the given action and input.
	Example(actionType string, input map[string]any) string

	// Parse interprets model output. It fails with *ParseError only when the
	// text cannot be interpreted at all.
	Parse(text string) (Parsed, error)
}

// Parsed is the structured record extracted from model output.
type Parsed struct {
	// Action is the requested action identifier. Empty means no action.
	Action string

	// FreeText is the reasoning or prose accompanying the request.
	FreeText string

	// Params holds the action-specific parameters.
	Params map[string]any
}

// HasAction reports whether the model named an action.
func (p Parsed) HasAction() bool {
	return p.Action != ""
}

// Get returns a single parameter.
func (p Parsed) Get(key string) (any, bool) {
	v, ok := p.Params[key]
	return v, ok
}

// String returns a string parameter, or "" if absent or not a string.
func (p Parsed) String(key string) string {
	if s, ok := p.Params[key].(string); ok {
		return s
	}
	return ""
}

// Decode decodes the parameters into v using JSON field names.
func (p Parsed) Decode(v any) error {
	params := p.Params
	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ParseError reports model output that could not be interpreted.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("format: cannot parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrNoObject is returned when the output contains no JSON object.
var ErrNoObject = errors.New("no JSON object found")

// decodeObject decodes a JSON object, repairing malformed JSON when the
// first attempt fails with a syntax error.
func decodeObject(data string) (map[string]any, error) {
	var obj map[string]any
	err := json.Unmarshal([]byte(data), &obj)
	if err == nil {
		return obj, nil
	}

	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return nil, err
	}

	fixed, repairErr := jsonrepair.JSONRepair(data)
	if repairErr != nil {
		return nil, err
	}
	obj = nil
	if err := json.Unmarshal([]byte(fixed), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// split separates the reserved keys from the action parameters.
func split(text string, obj map[string]any) (Parsed, error) {
	if obj == nil {
		return Parsed{}, &ParseError{Text: text, Err: ErrNoObject}
	}

	var parsed Parsed
	if raw, ok := obj[ActionKey]; ok && raw != nil {
		action, ok := raw.(string)
		if !ok {
			return Parsed{}, &ParseError{Text: text, Err: fmt.Errorf("%q must be a string, got %T", ActionKey, raw)}
		}
		parsed.Action = strings.TrimSpace(action)
	}
	if raw, ok := obj[FreeTextKey]; ok && raw != nil {
		if s, ok := raw.(string); ok {
			parsed.FreeText = s
		} else {
			parsed.FreeText = fmt.Sprint(raw)
		}
	}

	parsed.Params = make(map[string]any, len(obj))
	for k, v := range obj {
		if k == ActionKey || k == FreeTextKey {
			continue
		}
		parsed.Params[k] = v
	}
	return parsed, nil
}

// renderObject writes the action key first, then the input keys in sorted order.
func renderObject(actionType string, input map[string]any) string {
	var b strings.Builder
	b.WriteString("{")
	actionJSON, _ := json.Marshal(actionType)
	fmt.Fprintf(&b, "%q: %s", ActionKey, actionJSON)

	keys := make([]string, 0, len(input))
	for k := range input {
		if k == ActionKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := json.Marshal(input[k])
		if err != nil {
			v = []byte(`null`)
		}
		fmt.Fprintf(&b, ", %q: %s", k, v)
	}
	b.WriteString("}")
	return b.String()
}

// stripFence removes a surrounding markdown code fence, if any.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
