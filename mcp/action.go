package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/step"
)

// Caller invokes tools on an MCP server. *client.Client implements it.
type Caller interface {
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ErrToolFailed is returned when the server reports a tool error.
var ErrToolFailed = errors.New("mcp: tool failed")

type toolAction struct {
	caller  Caller
	tool    mcp.Tool
	example map[string]any
}

// NewAction wraps a remote MCP tool as an action. The action type is the tool
// name and the parameters chosen by the model are passed as tool arguments.
func NewAction(caller Caller, tool mcp.Tool) action.Action {
	return &toolAction{
		caller:  caller,
		tool:    tool,
		example: ExampleFromSchema(InputSchema(tool)),
	}
}

func (a *toolAction) Type() string        { return a.tool.Name }
func (a *toolAction) Description() string { return a.tool.Description }

func (a *toolAction) InputExample() map[string]any {
	out := make(map[string]any, len(a.example))
	for k, v := range a.example {
		out[k] = v
	}
	return out
}

func (a *toolAction) CreateStep(ctx context.Context, generatedText string, input format.Parsed) (*step.Step, error) {
	result, err := a.caller.CallTool(ctx, ToCallToolRequest(a.tool.Name, input))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.Join(ErrToolFailed, errors.New("empty result"))
	}

	text := ResultText(result)
	if result.IsError {
		if text == "" {
			return nil, ErrToolFailed
		}
		return nil, errors.Join(ErrToolFailed, errors.New(text))
	}

	var output any = text
	if result.StructuredContent != nil {
		output = result.StructuredContent
	}
	return step.New(a.tool.Name, step.Succeeded{Output: output, Summary: summarize(text, a.tool.Name)},
		step.WithGeneratedText(generatedText)), nil
}

// ToCallToolRequest converts parsed model parameters into an MCP request.
func ToCallToolRequest(name string, input format.Parsed) mcp.CallToolRequest {
	var args map[string]any
	if len(input.Params) > 0 {
		args = input.Params
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// ResultText extracts the text of a tool result. Non-text content is
// rendered as JSON.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}

const maxSummary = 200

func summarize(text, tool string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "called " + tool
	}
	if first, _, ok := strings.Cut(text, "\n"); ok {
		text = first
	}
	if r := []rune(text); len(r) > maxSummary {
		text = string(r[:maxSummary]) + "…"
	}
	return text
}

// InputSchema returns the tool's input schema, decoding RawInputSchema when set.
func InputSchema(tool mcp.Tool) mcp.ToolInputSchema {
	if len(tool.RawInputSchema) > 0 {
		var schema mcp.ToolInputSchema
		if err := json.Unmarshal(tool.RawInputSchema, &schema); err == nil {
			return schema
		}
	}
	return tool.InputSchema
}

// ExampleFromSchema builds a placeholder parameter set from a tool schema so
// the model sees every parameter name with a value of the right kind.
func ExampleFromSchema(schema mcp.ToolInputSchema) map[string]any {
	example := make(map[string]any, len(schema.Properties))
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, _ := schema.Properties[name].(map[string]any)
		example[name] = placeholder(name, prop)
	}
	return example
}

func placeholder(name string, prop map[string]any) any {
	typ, _ := prop["type"].(string)
	switch typ {
	case "integer", "number":
		return 0
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		if desc, ok := prop["description"].(string); ok && desc != "" {
			return desc
		}
		return name
	}
}
