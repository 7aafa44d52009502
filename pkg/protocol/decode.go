package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/urmzd/shutterlink/pkg/device/schema"
)

var (
	// ErrMalformed indicates a candidate line is not valid JSON
	ErrMalformed = errors.New("malformed message")

	// ErrUnknownType indicates a missing or unrecognised type discriminant
	ErrUnknownType = errors.New("unknown message type")

	// ErrInvalid indicates the message failed schema validation
	ErrInvalid = errors.New("invalid message")
)

// Decoder turns candidate lines into typed messages. A message is either
// fully valid or rejected; there is no partial acceptance.
type Decoder struct {
	validator *schema.Validator
}

// NewDecoder creates a Decoder backed by the given validator. A nil
// validator gets a private one.
func NewDecoder(v *schema.Validator) *Decoder {
	if v == nil {
		v = schema.NewValidator()
	}
	return &Decoder{validator: v}
}

// Decode parses and validates a single candidate line.
func (d *Decoder) Decode(line []byte) (Message, error) {
	var payload map[string]any
	if err := json.Unmarshal(line, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	typ, _ := payload["type"].(string)
	switch MessageType(typ) {
	case TypeMetadata, TypeSinglePoint, TypeThreePoint:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	if err := d.validator.ValidateMessage(typ, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch MessageType(typ) {
	case TypeSinglePoint:
		var m SinglePoint
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return &m, nil
	case TypeThreePoint:
		var m ThreePoint
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return &m, nil
	default:
		fields := maps.Clone(payload)
		delete(fields, "type")
		return &Metadata{Fields: fields}, nil
	}
}
