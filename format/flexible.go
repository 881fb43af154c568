package format

import (
	"encoding/json"
	"strings"
)

const flexibleDescription = `RESPONSE FORMAT (ALWAYS USE THIS FORMAT)

Explain and describe your reasoning step by step.
Then use the following format to specify the action you want to perform next:

{"action": "an action", "param1": "a parameter value", "param2": "another parameter value"}

You must always use exactly one action with the correct syntax per response.
Each response must precisely follow the action syntax.`

type flexibleFormat struct{}

// FlexibleJSON returns a format that accepts free-form reasoning followed by a
// JSON object. Text before the object becomes the free text and text after it
// is ignored; a response without a decodable JSON object is a pure thought.
func FlexibleJSON() Format {
	return flexibleFormat{}
}

func (flexibleFormat) Description() string {
	return flexibleDescription
}

func (flexibleFormat) Example(actionType string, input map[string]any) string {
	return renderObject(actionType, input)
}

func (flexibleFormat) Parse(text string) (Parsed, error) {
	start, obj := firstObject(text)
	if obj == nil {
		return Parsed{FreeText: strings.TrimSpace(text), Params: map[string]any{}}, nil
	}

	freeText := trimOpenFence(text[:start])

	parsed, err := split(text, obj)
	if err != nil {
		return Parsed{}, err
	}
	switch {
	case parsed.FreeText == "":
		parsed.FreeText = freeText
	case freeText != "":
		parsed.FreeText = freeText + "\n" + parsed.FreeText
	}
	return parsed, nil
}

// firstObject finds the JSON object holding the model's request. Each '{'
// is tried in order and only the first complete value after it is decoded,
// so braces in surrounding prose are ignored. Objects naming an action win,
// then repaired candidates naming an action, then the first plain object.
// A nil object means the text is prose.
func firstObject(text string) (int, map[string]any) {
	var starts []int
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			starts = append(starts, i)
		}
	}

	fallback, fallbackAt := map[string]any(nil), -1
	for _, i := range starts {
		var obj map[string]any
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err != nil || obj == nil {
			continue
		}
		if _, ok := obj[ActionKey]; ok {
			return i, obj
		}
		if fallback == nil {
			fallback, fallbackAt = obj, i
		}
	}

	for _, i := range starts {
		candidate := text[i:]
		if end := strings.LastIndexByte(candidate, '}'); end >= 0 {
			candidate = candidate[:end+1]
		}
		obj, err := decodeObject(candidate)
		if err != nil {
			continue
		}
		if _, ok := obj[ActionKey]; ok {
			return i, obj
		}
	}
	return fallbackAt, fallback
}

// trimOpenFence drops a dangling markdown fence opener such as "```json".
func trimOpenFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "```"); i >= 0 && !strings.Contains(s[i+3:], "\n") {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
