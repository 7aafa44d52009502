package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

func measurement(s1, s2, s3 float64) *protocol.ThreePoint {
	return &protocol.ThreePoint{
		Sensor1: protocol.SensorTiming{Open: s1, Close: s1 + 100},
		Sensor2: protocol.SensorTiming{Open: s2, Close: s2 + 100},
		Sensor3: protocol.SensorTiming{Open: s3, Close: s3 + 100},
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		name        string
		current     device.Orientation
		m           *protocol.ThreePoint
		want        device.Orientation
		wantChanged bool
	}{
		{"auto sensor1 first", device.OrientationAuto, measurement(10, 15, 20), device.OrientationVertical, true},
		{"auto sensor3 first", device.OrientationAuto, measurement(30, 25, 20), device.OrientationHorizontal, true},
		{"auto simultaneous", device.OrientationAuto, measurement(20, 20, 20), device.OrientationHorizontal, true},
		{"manual vertical kept", device.OrientationVertical, measurement(30, 25, 20), device.OrientationVertical, false},
		{"manual horizontal kept", device.OrientationHorizontal, measurement(10, 15, 20), device.OrientationHorizontal, false},
		{"nil measurement", device.OrientationAuto, nil, device.OrientationAuto, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Infer(tt.current, tt.m)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestInferIgnoresSensor2(t *testing.T) {
	for _, s2 := range []float64{-1e9, 0, 15, 1e9} {
		got, _ := Infer(device.OrientationAuto, measurement(10, s2, 20))
		assert.Equal(t, device.OrientationVertical, got)
	}
}
