package types

import (
	"time"

	"github.com/urmzd/shutterlink/pkg/protocol"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// --- Request DTOs ---

// ConnectRequest is the request body for POST /link/connect
type ConnectRequest struct {
	Transport string `json:"transport" binding:"required" example:"usb"`
	Port      string `json:"port,omitempty" example:"/dev/ttyUSB0"`
}

// ViewModeRequest is the request body for PUT /mode
type ViewModeRequest struct {
	ViewMode string `json:"view_mode" binding:"required" example:"three_point"`
}

// OrientationRequest is the request body for PUT /settings/orientation
type OrientationRequest struct {
	Orientation string `json:"orientation" binding:"required" example:"auto"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Link      string    `json:"link"`
	Timestamp time.Time `json:"timestamp"`
}

// LinkResponse is returned from the /link endpoints
type LinkResponse struct {
	State     string    `json:"state" example:"connected"`
	Transport string    `json:"transport,omitempty" example:"usb"`
	Session   string    `json:"session,omitempty"`
	Since     time.Time `json:"since"`
}

// PortsResponse is returned from GET /ports
type PortsResponse struct {
	Ports []transport.PortInfo `json:"ports"`
	Count int                  `json:"count"`
}

// ViewModeResponse is returned from GET/PUT /mode
type ViewModeResponse struct {
	ViewMode   string `json:"view_mode" example:"three_point"`
	DeviceMode string `json:"device_mode" example:"three_point"`
	Sent       *bool  `json:"sent,omitempty"`
}

// OrientationResponse is returned from GET/PUT /settings/orientation
type OrientationResponse struct {
	Orientation string `json:"orientation" example:"vertical"`
}

// LatestResponse is returned from GET /measurements/latest
type LatestResponse struct {
	Metadata    map[string]any        `json:"metadata,omitempty"`
	SinglePoint *protocol.SinglePoint `json:"single_point,omitempty"`
	ThreePoint  *protocol.ThreePoint  `json:"three_point,omitempty"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
}

// StatusResponse is returned by actions without a richer result
type StatusResponse struct {
	Status string `json:"status"`
}
