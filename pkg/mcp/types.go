package mcp

import (
	"time"

	"github.com/urmzd/shutterlink/pkg/link"
	"github.com/urmzd/shutterlink/pkg/protocol"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Link      string `json:"link" jsonschema:"description=Tester link state"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Link Tools ---

// ConnectInput is the input for the connect tool
type ConnectInput struct {
	Transport string `json:"transport" jsonschema:"required,description=usb or bluetooth"`
	Port      string `json:"port,omitempty" jsonschema:"description=Serial port path for a usb connection"`
}

// LinkOutput is the output for the get_link, connect and disconnect tools
type LinkOutput struct {
	State     string `json:"state" jsonschema:"description=disconnected, connecting or connected"`
	Transport string `json:"transport,omitempty" jsonschema:"description=Active transport"`
	Session   string `json:"session,omitempty" jsonschema:"description=Connection session id"`
	Since     string `json:"since,omitempty" jsonschema:"description=ISO8601 time of the last state change"`
}

// ListPortsOutput is the output for the list_ports tool
type ListPortsOutput struct {
	Ports []transport.PortInfo `json:"ports" jsonschema:"description=Serial ports present on the host"`
	Count int                  `json:"count" jsonschema:"description=Number of ports"`
}

// --- Settings Tools ---

// SetViewModeInput is the input for the set_view_mode tool
type SetViewModeInput struct {
	ViewMode string `json:"view_mode" jsonschema:"required,description=single_point, three_point, shutter_timing or shot_by_shot"`
}

// SetViewModeOutput is the output for the set_view_mode tool
type SetViewModeOutput struct {
	ViewMode   string `json:"view_mode" jsonschema:"description=Stored view mode"`
	DeviceMode string `json:"device_mode" jsonschema:"description=Device measurement mode it selects"`
	Sent       bool   `json:"sent" jsonschema:"description=Whether the mode command reached a connected tester"`
}

// OrientationOutput is the output for the orientation tools
type OrientationOutput struct {
	Orientation string `json:"orientation" jsonschema:"description=auto, vertical or horizontal"`
}

// --- Measurement Tools ---

// LatestOutput is the output for the get_latest_measurements tool
type LatestOutput struct {
	Metadata    map[string]any        `json:"metadata,omitempty" jsonschema:"description=Device metadata fields"`
	SinglePoint *protocol.SinglePoint `json:"single_point,omitempty" jsonschema:"description=Last single-point measurement"`
	ThreePoint  *protocol.ThreePoint  `json:"three_point,omitempty" jsonschema:"description=Last three-point measurement"`
	UpdatedAt   string                `json:"updated_at,omitempty" jsonschema:"description=ISO8601 time of the last measurement"`
}

// ResultOutput is the output of tools that only report success
type ResultOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the operation succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Helper conversions ---

// LinkToOutput converts a link.Status to LinkOutput
func LinkToOutput(st link.Status) LinkOutput {
	out := LinkOutput{
		State:     st.State.String(),
		Transport: string(st.Transport),
		Session:   st.Session,
	}
	if !st.Since.IsZero() {
		out.Since = st.Since.UTC().Format(time.RFC3339)
	}
	return out
}
