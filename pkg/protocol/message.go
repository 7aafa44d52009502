package protocol

import (
	"encoding/json"
	"maps"
)

// MessageType is the wire discriminant carried in every message's "type" field.
type MessageType string

const (
	TypeMetadata    MessageType = "metadata"
	TypeSinglePoint MessageType = "single_point"
	TypeThreePoint  MessageType = "three_point"
)

// Message is a validated inbound device message. It is one of *Metadata,
// *SinglePoint or *ThreePoint.
type Message interface {
	Type() MessageType
	isMessage()
}

// Metadata carries free-form device information.
type Metadata struct {
	Fields map[string]any
}

// SinglePoint is one open/close timing sample.
type SinglePoint struct {
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
	Speed string  `json:"speed,omitempty"`
}

// SensorTiming is the open/close pair reported by one sensor.
type SensorTiming struct {
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
}

// ThreePoint is a measurement from the three sensors across the frame.
type ThreePoint struct {
	Sensor1 SensorTiming `json:"sensor1"`
	Sensor2 SensorTiming `json:"sensor2"`
	Sensor3 SensorTiming `json:"sensor3"`
}

func (*Metadata) Type() MessageType    { return TypeMetadata }
func (*SinglePoint) Type() MessageType { return TypeSinglePoint }
func (*ThreePoint) Type() MessageType  { return TypeThreePoint }

func (*Metadata) isMessage()    {}
func (*SinglePoint) isMessage() {}
func (*ThreePoint) isMessage()  {}

// MarshalJSON encodes the metadata in its wire form.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	maps.Copy(out, m.Fields)
	out["type"] = TypeMetadata
	return json.Marshal(out)
}

// MarshalJSON encodes the sample in its wire form.
func (m *SinglePoint) MarshalJSON() ([]byte, error) {
	type wire SinglePoint
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		*wire
	}{TypeSinglePoint, (*wire)(m)})
}

// MarshalJSON encodes the measurement in its wire form.
func (m *ThreePoint) MarshalJSON() ([]byte, error) {
	type wire ThreePoint
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		*wire
	}{TypeThreePoint, (*wire)(m)})
}
