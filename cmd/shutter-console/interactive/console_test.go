package interactive

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/device/devicetest"
	"github.com/urmzd/shutterlink/pkg/link"
	"github.com/urmzd/shutterlink/pkg/protocol"
	"github.com/urmzd/shutterlink/pkg/session"
	"github.com/urmzd/shutterlink/pkg/transport"
)

type memSettings struct {
	mu          sync.Mutex
	orientation device.Orientation
	viewMode    device.ViewMode
}

func (m *memSettings) Orientation(context.Context) (device.Orientation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orientation, nil
}

func (m *memSettings) SetOrientation(_ context.Context, o device.Orientation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orientation = o
	return nil
}

func (m *memSettings) ViewMode(context.Context) (device.ViewMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewMode, nil
}

func (m *memSettings) SetViewMode(_ context.Context, v device.ViewMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewMode = v
	return nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type fixture struct {
	console *Console
	session *session.Session
	fake    *devicetest.FakeTransport
	out     *syncBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	l := link.New()
	fake := devicetest.NewFake(device.TransportUSB)
	l.Register(device.TransportUSB, fake.Factory())
	l.Register(device.TransportBluetooth, device.NullFactory(device.TransportBluetooth))

	s := session.New(l, &memSettings{orientation: device.OrientationAuto, viewMode: device.ViewSinglePoint})
	s.Start()
	t.Cleanup(func() {
		_ = l.Disconnect()
		s.Close()
	})

	out := &syncBuffer{}
	ports := func() ([]transport.PortInfo, error) {
		return []transport.PortInfo{
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10c4", PID: "ea60", Product: "CP2102"},
			{Name: "/dev/ttyS0"},
		}, nil
	}
	return &fixture{console: newConsole(s, ports, out), session: s, fake: fake, out: out}
}

func (f *fixture) run(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	require.True(t, f.console.execute(context.Background(), line))
	return f.out.String()
}

func TestConnectAndStatus(t *testing.T) {
	f := newFixture(t)

	out := f.run(t, "connect usb")
	assert.Contains(t, out, "Link:        connected (usb, session ")
	assert.Contains(t, out, "View mode:   single_point (device single_point)")
	assert.True(t, f.fake.Connected())

	out = f.run(t, "disconnect")
	assert.Equal(t, "Disconnected\n", out)
	assert.False(t, f.fake.Connected())

	out = f.run(t, "status")
	assert.Contains(t, out, "Link:        disconnected\n")
}

func TestConnectErrors(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "connect"), "Usage: connect")
	assert.Contains(t, f.run(t, "connect infrared"), `unknown transport "infrared"`)
	assert.Contains(t, f.run(t, "connect bluetooth"), "Connect failed: ")
	assert.Contains(t, f.run(t, "connect usb /dev/ttyACM0"), "serial port selection not supported")
}

func TestMode(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "View mode three_point saved (not connected)\n", f.run(t, "mode three_point"))
	assert.Empty(t, f.fake.Writes())

	f.run(t, "connect usb")
	assert.Equal(t, "View mode shutter_timing (device three_point)\n", f.run(t, "mode SHUTTER_TIMING"))
	assert.Equal(t, [][]byte{[]byte("MODE:2\n")}, f.fake.Writes())

	assert.Contains(t, f.run(t, "mode"), "Usage: mode")
	assert.Contains(t, f.run(t, "mode panorama"), "unknown view mode")
}

func TestOrientation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Orientation: auto\n", f.run(t, "orientation"))
	assert.Equal(t, "Orientation: vertical\n", f.run(t, "orientation vertical"))
	assert.Equal(t, "Orientation: vertical\n", f.run(t, "o"))
	assert.Contains(t, f.run(t, "orientation diagonal"), "unknown orientation")
}

func TestPorts(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "  /dev/ttyUSB0  USB 10c4:ea60 CP2102\n  /dev/ttyS0\n", f.run(t, "ports"))

	f.console.listPorts = func() ([]transport.PortInfo, error) { return nil, nil }
	assert.Equal(t, "No serial ports found\n", f.run(t, "ports"))

	f.console.listPorts = func() ([]transport.PortInfo, error) { return nil, errors.New("permission denied") }
	assert.Equal(t, "Error: permission denied\n", f.run(t, "ports"))
}

func TestLatestAndReset(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "No measurements yet\n", f.run(t, "latest"))

	events := f.session.Subscribe()
	f.run(t, "connect usb")
	f.fake.Feed(
		`{"type":"metadata","firmware":"1.4.2","battery":87}`+"\n",
		`{"type":"single_point","open":0.5,"close":8.5,"speed":"1/125"}`+"\n",
	)
	require.Eventually(t, func() bool {
		evt := <-events
		return evt.Type == session.EventSinglePoint
	}, time.Second, time.Millisecond)

	out := f.run(t, "latest")
	assert.Contains(t, out, "Device:      battery=87 firmware=1.4.2\n")
	assert.Contains(t, out, "Single:      open=0.5 close=8.5 speed=1/125\n")
	assert.NotContains(t, out, "Three point")

	assert.Equal(t, "Measurements cleared\n", f.run(t, "reset"))
	assert.Equal(t, "No measurements yet\n", f.run(t, "latest"))
}

func TestExitAndUnknown(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "", f.run(t, "   "))
	assert.Contains(t, f.run(t, "frobnicate"), "Unknown command: frobnicate")
	assert.Contains(t, f.run(t, "help"), "Shutter Tester Commands:")

	for _, cmd := range []string{"exit", "quit", "q"} {
		assert.False(t, f.console.execute(context.Background(), cmd))
	}
}

func TestWatchPrintsEvents(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := f.session.Subscribe()
	done := make(chan struct{})
	go func() {
		f.console.watch(ctx, events)
		close(done)
	}()

	require.NoError(t, f.session.Connect(ctx, device.TransportUSB, ""))
	f.fake.Feed(`{"type":"three_point","sensor1":{"open":10,"close":40},"sensor2":{"open":15,"close":45},"sensor3":{"open":20,"close":50}}` + "\n")

	require.Eventually(t, func() bool {
		out := f.out.String()
		return bytes.Contains([]byte(out), []byte("[three point] s1 10/40  s2 15/45  s3 20/50"))
	}, time.Second, 5*time.Millisecond)

	out := f.out.String()
	assert.Contains(t, out, "[link] connecting (usb)\n")
	assert.Contains(t, out, "[link] connected (usb)\n")
	assert.Contains(t, out, "[orientation] vertical (inferred)\n")

	f.session.Unsubscribe(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after unsubscribe")
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		evt  session.Event
		want string
	}{
		{"reset", session.Event{Type: session.EventReset}, "[reset]"},
		{"manual orientation", session.Event{Type: session.EventOrientation, Data: session.OrientationChange{Orientation: device.OrientationHorizontal}}, "[orientation] horizontal"},
		{"disconnected", session.Event{Type: session.EventState, Data: session.StateChange{From: "connected", To: "disconnected"}}, "[link] disconnected"},
		{"single without speed", session.Event{Type: session.EventSinglePoint, Data: &protocol.SinglePoint{Open: 1, Close: 2.25}}, "[single] open=1 close=2.25"},
		{"mode", session.Event{Type: session.EventMode, Data: session.ModeChange{ViewMode: device.ViewThreePoint}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatEvent(tt.evt))
		})
	}
}
