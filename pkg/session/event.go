package session

import (
	"time"

	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

// EventType identifies what an Event carries.
type EventType string

const (
	EventState       EventType = "state"
	EventMetadata    EventType = "metadata"
	EventSinglePoint EventType = "single_point"
	EventThreePoint  EventType = "three_point"
	EventOrientation EventType = "orientation"
	EventMode        EventType = "mode"
	EventReset       EventType = "reset"
)

// Event is broadcast to UI subscribers.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// StateChange is the data of an EventState.
type StateChange struct {
	From      string              `json:"from"`
	To        string              `json:"to"`
	Transport device.TransportKind `json:"transport,omitempty"`
}

// OrientationChange is the data of an EventOrientation.
type OrientationChange struct {
	Orientation device.Orientation `json:"orientation"`
	Inferred    bool               `json:"inferred"`
}

// ModeChange is the data of an EventMode. Sent is false when no device was
// connected to receive the command.
type ModeChange struct {
	ViewMode   device.ViewMode `json:"view_mode"`
	DeviceMode string          `json:"device_mode"`
	Sent       bool            `json:"sent"`
}

// Latest holds the most recent message of each kind received this session.
type Latest struct {
	Metadata    map[string]any        `json:"metadata,omitempty"`
	SinglePoint *protocol.SinglePoint `json:"single_point,omitempty"`
	ThreePoint  *protocol.ThreePoint  `json:"three_point,omitempty"`
	UpdatedAt   time.Time             `json:"updated_at,omitzero"`
}
