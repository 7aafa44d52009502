package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/shutterlink/pkg/db"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/transport"
)

type stubConn struct {
	mu      sync.Mutex
	written [][]byte
}

func (c *stubConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), p...))
	return len(p), nil
}

func (c *stubConn) Done() <-chan struct{} { return nil }

func (c *stubConn) Close() error { return nil }

type stubDialer struct {
	cfg  transport.BLEConfig
	conn *stubConn
}

func (d *stubDialer) Dial(_ context.Context, cfg transport.BLEConfig, _ func([]byte)) (transport.GATTConn, error) {
	d.cfg = cfg
	return d.conn, nil
}

func newApp(t *testing.T, dbPath string, opts Options) *App {
	t.Helper()
	opts.DBPath = dbPath
	if opts.Dialer == nil {
		opts.Dialer = &stubDialer{conn: &stubConn{}}
	}
	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewBootstrapsDefaultProfile(t *testing.T) {
	a := newApp(t, filepath.Join(t.TempDir(), "app.db"), Options{SerialPort: filepath.Join(t.TempDir(), "missing-tty")})
	ctx := context.Background()

	assert.Equal(t, "default", a.Config.Profile.Name)
	assert.Equal(t, db.DefaultBaudRate, a.Config.BaudRate())
	assert.True(t, a.Config.BLEEnabled())

	st, err := a.Session.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.StateDisconnected, st.Link.State)
	assert.Equal(t, device.OrientationAuto, st.Orientation)
	assert.Equal(t, device.ViewSinglePoint, st.ViewMode)

	count, err := testutil.GatherAndCount(a.Registry, "shutterlink_link_state")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// updateBLE seeds a database at path and rewrites its BLE link config.
func updateBLE(t *testing.T, path string, fn func(*db.BLELink)) {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenAndMigrate(ctx, path)
	require.NoError(t, err)
	defer func() { require.NoError(t, database.Close()) }()

	cfg, err := database.ActiveConfig(ctx)
	require.NoError(t, err)
	ble := *cfg.BLE
	fn(&ble)
	require.NoError(t, database.Links().UpdateBLE(ctx, &ble))
}

func TestTransportsFollowConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	updateBLE(t, path, func(l *db.BLELink) { l.Enabled = false })

	a := newApp(t, path, Options{SerialPort: filepath.Join(t.TempDir(), "missing-tty")})
	ctx := context.Background()
	assert.False(t, a.Config.BLEEnabled())

	err := a.Session.Connect(ctx, device.TransportUSB, "")
	assert.ErrorIs(t, err, device.ErrConnectFailed)

	err = a.Session.Connect(ctx, device.TransportBluetooth, "")
	assert.ErrorIs(t, err, device.ErrUnavailable)
	assert.Equal(t, device.StateDisconnected, a.Link.State())
}

func TestBluetoothEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	ctx := context.Background()
	updateBLE(t, path, func(l *db.BLELink) { l.DeviceName = "Bench Tester" })

	dialer := &stubDialer{conn: &stubConn{}}
	a := newApp(t, path, Options{Dialer: dialer})

	require.NoError(t, a.Session.Connect(ctx, device.TransportBluetooth, ""))
	assert.Equal(t, device.StateConnected, a.Link.State())
	assert.Equal(t, "Bench Tester", dialer.cfg.DeviceName)
	assert.Equal(t, transport.DefaultServiceUUID, dialer.cfg.ServiceUUID)

	sent, err := a.Session.SetViewMode(ctx, device.ViewThreePoint)
	require.NoError(t, err)
	assert.True(t, sent)

	dialer.conn.mu.Lock()
	defer dialer.conn.mu.Unlock()
	assert.Equal(t, [][]byte{[]byte("MODE:2\n")}, dialer.conn.written)

	// The view mode is persisted for the profile.
	v, err := a.DB.Settings(a.Config.Profile.ID).ViewMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.ViewThreePoint, v)
}

func TestProfileSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	ctx := context.Background()

	a := newApp(t, path, Options{Profile: "darkroom"})
	assert.Equal(t, "darkroom", a.Config.Profile.Name)
	assert.Equal(t, "", a.Config.SerialPort())

	// With no serial port configured the USB transport is unavailable.
	err := a.Session.Connect(ctx, device.TransportUSB, "")
	assert.ErrorIs(t, err, device.ErrUnavailable)

	require.NoError(t, a.Session.SetOrientation(ctx, device.OrientationHorizontal))
	require.NoError(t, a.Close())

	// Settings belong to the profile.
	b := newApp(t, path, Options{Profile: "default"})
	st, err := b.Session.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.OrientationAuto, st.Orientation)
}
