package device

import "fmt"

// TransportKind identifies which physical link carries the device protocol.
type TransportKind string

const (
	TransportUSB       TransportKind = "usb"
	TransportBluetooth TransportKind = "bluetooth"
)

// ParseTransportKind validates a transport kind string.
func ParseTransportKind(s string) (TransportKind, error) {
	switch k := TransportKind(s); k {
	case TransportUSB, TransportBluetooth:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown transport %q", ErrValidation, s)
	}
}

// State is the connection lifecycle state of a link.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Mode is the operating mode of the physical device.
type Mode int

const (
	ModeSinglePoint Mode = 1
	ModeThreePoint  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeSinglePoint:
		return "single_point"
	case ModeThreePoint:
		return "three_point"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ViewMode is the application view selected by the user. Each view maps to
// exactly one device mode.
type ViewMode string

const (
	ViewSinglePoint   ViewMode = "single_point"
	ViewThreePoint    ViewMode = "three_point"
	ViewShutterTiming ViewMode = "shutter_timing"
	ViewShotByShot    ViewMode = "shot_by_shot"
)

// ParseViewMode validates a view mode string.
func ParseViewMode(s string) (ViewMode, error) {
	switch v := ViewMode(s); v {
	case ViewSinglePoint, ViewThreePoint, ViewShutterTiming, ViewShotByShot:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view mode %q", ErrValidation, s)
	}
}

// DeviceMode maps the view to the device mode it needs. Multi-sensor views
// need three-point mode; every single-sample view uses single-point mode.
func (v ViewMode) DeviceMode() Mode {
	switch v {
	case ViewThreePoint, ViewShutterTiming:
		return ModeThreePoint
	default:
		return ModeSinglePoint
	}
}

// Orientation is the axis along which the shutter curtain travels.
type Orientation string

const (
	OrientationAuto       Orientation = "auto"
	OrientationVertical   Orientation = "vertical"
	OrientationHorizontal Orientation = "horizontal"
)

// ParseOrientation validates an orientation string.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(s); o {
	case OrientationAuto, OrientationVertical, OrientationHorizontal:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown orientation %q", ErrValidation, s)
	}
}
