package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks decoded device messages against the protocol's JSON
// Schema documents. Each type's schema is compiled on its first message.
type Validator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates a Validator with nothing compiled yet.
func NewValidator() *Validator {
	return &Validator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateMessage validates a decoded device message against the schema
// selected by its type field.
func (v *Validator) ValidateMessage(msgType string, payload map[string]any) error {
	s, err := v.schemaFor(msgType)
	if err != nil {
		return err
	}
	return s.Validate(payload)
}

func (v *Validator) schemaFor(msgType string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[msgType]; ok {
		return s, nil
	}

	doc, ok := MessageSchema(msgType)
	if !ok {
		return nil, fmt.Errorf("no schema for message type %q", msgType)
	}

	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", msgType, err)
	}

	url := msgType + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", msgType, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", msgType, err)
	}

	v.compiled[msgType] = s
	return s, nil
}
