// Package tools declares callable tools to the model and executes the
// toolUse requests it sends back.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/sonic-core/core/wire"
)

// Tool is a named operation the model may invoke mid-conversation. Its
// input schema is declared in the prompt-start configuration; the handler
// receives the decoded input and returns a serialized-as-text result.
type Tool struct {
	name        string
	description string
	inputSchema string

	execute func(input string) (string, error)
}

// New builds a tool whose input schema is reflected from the handler's
// parameter type.
func New[T any](name, description string, handler func(T) (string, error)) (Tool, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var input T
	schema := reflector.Reflect(input)
	schema.Version = ""

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return Tool{}, fmt.Errorf("failed to serialize input schema for tool %q: %w", name, err)
	}

	return Tool{
		name:        name,
		description: description,
		inputSchema: string(schemaJSON),
		execute: func(rawInput string) (string, error) {
			var input T
			if rawInput != "" {
				if err := json.Unmarshal([]byte(rawInput), &input); err != nil {
					return "", fmt.Errorf("failed to decode input for tool %q: %w", name, err)
				}
			}
			return handler(input)
		},
	}, nil
}

// Name returns the name the model invokes the tool by.
func (t Tool) Name() string { return t.name }

// Spec returns the wire declaration of the tool.
func (t Tool) Spec() wire.ToolSpec {
	return wire.ToolSpec{ToolSpec: wire.ToolSpecInner{
		Name:        t.name,
		Description: t.description,
		InputSchema: wire.ToolInputSchema{JSON: t.inputSchema},
	}}
}

// Execute runs the tool against the serialized input from a toolUse event.
func (t Tool) Execute(input string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no handler", t.name)
	}
	return t.execute(input)
}

// Configuration builds the prompt-start tool configuration for a set of
// tools; nil when the set is empty so the field is omitted entirely.
func Configuration(tools []Tool) *wire.ToolConfiguration {
	if len(tools) == 0 {
		return nil
	}

	specs := make([]wire.ToolSpec, 0, len(tools))
	for _, tool := range tools {
		specs = append(specs, tool.Spec())
	}
	return &wire.ToolConfiguration{Tools: specs}
}
