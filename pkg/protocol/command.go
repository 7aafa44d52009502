package protocol

import (
	"fmt"

	"github.com/urmzd/shutterlink/pkg/device"
)

const modeCommandPrefix = "MODE:"

// EncodeMode returns the newline-terminated command that switches the device
// into mode.
func EncodeMode(mode device.Mode) ([]byte, error) {
	switch mode {
	case device.ModeSinglePoint, device.ModeThreePoint:
		return fmt.Appendf(nil, "%s%d\n", modeCommandPrefix, int(mode)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported device mode %d", device.ErrValidation, int(mode))
	}
}
