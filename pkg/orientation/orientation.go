// Package orientation infers which way the shutter curtain travels from the
// sensor timings of a three-point measurement.
package orientation

import (
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

// Infer proposes an orientation for the current setting given a three-point
// measurement. Only an automatic setting is ever changed: the curtain is
// vertical when sensor 1 opens before sensor 3, otherwise horizontal. A
// manual setting is returned unchanged with changed=false.
func Infer(current device.Orientation, m *protocol.ThreePoint) (next device.Orientation, changed bool) {
	if current != device.OrientationAuto || m == nil {
		return current, false
	}
	if m.Sensor1.Open < m.Sensor3.Open {
		return device.OrientationVertical, true
	}
	return device.OrientationHorizontal, true
}
