package tools

import (
	"errors"
	"strings"
	"testing"
)

type weatherInput struct {
	City string `json:"city"`
	Days int    `json:"days,omitempty"`
}

func TestNewReflectsInputSchemaFromHandlerType(t *testing.T) {
	tool, err := New("weather", "Looks up a forecast.", func(weatherInput) (string, error) {
		return "", nil
	})
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	spec := tool.Spec()
	if spec.ToolSpec.Name != "weather" || spec.ToolSpec.Description != "Looks up a forecast." {
		t.Fatalf("expected name and description in the spec, got %+v", spec.ToolSpec)
	}

	schema := spec.ToolSpec.InputSchema.JSON
	if !strings.Contains(schema, `"city"`) {
		t.Fatalf("expected the schema to declare the city property, got %s", schema)
	}
	if strings.Contains(schema, `"$ref"`) {
		t.Fatalf("expected an inlined schema without references, got %s", schema)
	}
}

func TestExecuteDecodesSerializedInput(t *testing.T) {
	tool, err := New("weather", "Looks up a forecast.", func(input weatherInput) (string, error) {
		if input.City != "Ljubljana" || input.Days != 3 {
			t.Errorf("expected decoded input, got %+v", input)
		}
		return "sunny", nil
	})
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	result, err := tool.Execute(`{"city":"Ljubljana","days":3}`)
	if err != nil {
		t.Fatalf("expected execution to succeed, got %v", err)
	}
	if result != "sunny" {
		t.Fatalf("expected the handler result, got %q", result)
	}
}

func TestExecuteToleratesEmptyInput(t *testing.T) {
	tool, err := New("ping", "Replies pong.", func(struct{}) (string, error) {
		return "pong", nil
	})
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	result, err := tool.Execute("")
	if err != nil {
		t.Fatalf("expected empty input to be tolerated, got %v", err)
	}
	if result != "pong" {
		t.Fatalf("expected pong, got %q", result)
	}
}

func TestExecuteFailsOnMalformedInput(t *testing.T) {
	tool, err := New("weather", "Looks up a forecast.", func(weatherInput) (string, error) {
		return "", nil
	})
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	if _, err := tool.Execute(`{"city":`); err == nil {
		t.Fatalf("expected malformed input to fail execution")
	}
}

func TestExecutePropagatesHandlerError(t *testing.T) {
	handlerErr := errors.New("service unavailable")
	tool, err := New("weather", "Looks up a forecast.", func(weatherInput) (string, error) {
		return "", handlerErr
	})
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	if _, err := tool.Execute(`{"city":"Ljubljana"}`); !errors.Is(err, handlerErr) {
		t.Fatalf("expected the handler error to propagate, got %v", err)
	}
}

func TestConfigurationIsNilForNoTools(t *testing.T) {
	if config := Configuration(nil); config != nil {
		t.Fatalf("expected nil configuration for no tools, got %+v", config)
	}
}

func TestConfigurationListsEverySpec(t *testing.T) {
	first, err := New("first", "First tool.", func(struct{}) (string, error) { return "", nil })
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}
	second, err := New("second", "Second tool.", func(struct{}) (string, error) { return "", nil })
	if err != nil {
		t.Fatalf("expected tool construction to succeed, got %v", err)
	}

	config := Configuration([]Tool{first, second})
	if config == nil || len(config.Tools) != 2 {
		t.Fatalf("expected two tool specs, got %+v", config)
	}
	if config.Tools[0].ToolSpec.Name != "first" || config.Tools[1].ToolSpec.Name != "second" {
		t.Fatalf("expected specs in declaration order, got %+v", config.Tools)
	}
}
