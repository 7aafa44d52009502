package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewModeDeviceMode(t *testing.T) {
	tests := []struct {
		view ViewMode
		want Mode
	}{
		{ViewSinglePoint, ModeSinglePoint},
		{ViewShotByShot, ModeSinglePoint},
		{ViewThreePoint, ModeThreePoint},
		{ViewShutterTiming, ModeThreePoint},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.DeviceMode())
		})
	}
}

func TestParseViewMode(t *testing.T) {
	v, err := ParseViewMode("shutter_timing")
	require.NoError(t, err)
	assert.Equal(t, ViewShutterTiming, v)

	_, err = ParseViewMode("panorama")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("vertical")
	require.NoError(t, err)
	assert.Equal(t, OrientationVertical, o)

	_, err = ParseOrientation("diagonal")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseTransportKind(t *testing.T) {
	k, err := ParseTransportKind("bluetooth")
	require.NoError(t, err)
	assert.Equal(t, TransportBluetooth, k)

	_, err = ParseTransportKind("wifi")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}

func TestNullTransport(t *testing.T) {
	tr := NewNullTransport(TransportBluetooth)

	assert.Equal(t, TransportBluetooth, tr.Kind())
	assert.ErrorIs(t, tr.Connect(t.Context()), ErrUnavailable)
	assert.NoError(t, tr.Disconnect())
	assert.NoError(t, tr.Disconnect())
	assert.ErrorIs(t, tr.SendCommand(t.Context(), []byte("MODE:1\n")), ErrNotConnected)
}
