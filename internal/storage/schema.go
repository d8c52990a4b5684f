package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	embedschema "github.com/nick-dorsch/taskboard/embed/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

type schemas struct {
	current *jsonschema.Schema
	legacy  *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(embedschema.TasksV2URL, strings.NewReader(embedschema.TasksV2)); err != nil {
		return nil, fmt.Errorf("failed to add tasks_v2 schema: %w", err)
	}
	if err := compiler.AddResource(embedschema.TasksV1URL, strings.NewReader(embedschema.TasksV1)); err != nil {
		return nil, fmt.Errorf("failed to add tasks_v1 schema: %w", err)
	}

	current, err := compiler.Compile(embedschema.TasksV2URL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile tasks_v2 schema: %w", err)
	}
	legacy, err := compiler.Compile(embedschema.TasksV1URL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile tasks_v1 schema: %w", err)
	}
	return &schemas{current: current, legacy: legacy}, nil
}

// decode parses raw, checks it against schema and unmarshals it into out.
// Any failure means the stored value is unusable as a whole.
func decode(raw string, schema *jsonschema.Schema, out any) error {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema mismatch: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}
