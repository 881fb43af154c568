package format

import "strings"

const jsonDescription = `RESPONSE FORMAT (ALWAYS USE THIS FORMAT)

Respond with exactly one JSON object and nothing else.
Put your reasoning in the "_freeText" property.
Name the action you want to perform next in the "action" property and add its parameters as further properties:

{"_freeText": "your reasoning", "action": "an action", "param1": "a parameter value"}

To only think without acting, leave out the "action" property.`

type jsonFormat struct{}

// JSON returns a format where the whole model response is one JSON object.
func JSON() Format {
	return jsonFormat{}
}

func (jsonFormat) Description() string {
	return jsonDescription
}

func (jsonFormat) Example(actionType string, input map[string]any) string {
	return renderObject(actionType, input)
}

func (jsonFormat) Parse(text string) (Parsed, error) {
	body := stripFence(text)
	if body == "" || !strings.HasPrefix(body, "{") {
		return Parsed{}, &ParseError{Text: text, Err: ErrNoObject}
	}

	obj, err := decodeObject(body)
	if err != nil {
		return Parsed{}, &ParseError{Text: text, Err: err}
	}
	return split(text, obj)
}
