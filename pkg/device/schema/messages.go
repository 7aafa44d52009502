package schema

import (
	"embed"
	"encoding/json"
)

//go:embed schemas/*.json
var messageSchemas embed.FS

// MessageSchema returns the JSON Schema document for an inbound device
// message type, or false if the type is not part of the protocol.
func MessageSchema(msgType string) (json.RawMessage, bool) {
	switch msgType {
	case "metadata", "single_point", "three_point":
	default:
		return nil, false
	}

	doc, err := messageSchemas.ReadFile("schemas/" + msgType + ".json")
	if err != nil {
		return nil, false
	}
	return doc, true
}
