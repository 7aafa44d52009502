package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/link"
)

type fakeGATT struct {
	mu       sync.Mutex
	writable bool
	written  [][]byte
	closes   int
	closeErr error
	lost     chan struct{}
}

func (c *fakeGATT) Done() <-chan struct{} {
	return c.lost
}

func (c *fakeGATT) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.writable {
		return 0, device.ErrNotWritable
	}
	c.written = append(c.written, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeGATT) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return c.closeErr
}

type fakeDialer struct {
	conn    *fakeGATT
	err     error
	cfg     BLEConfig
	notify  func([]byte)
	blockCh chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, cfg BLEConfig, notify func([]byte)) (GATTConn, error) {
	d.cfg = cfg
	d.notify = notify
	if d.blockCh != nil {
		<-d.blockCh
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func TestBLEConfigDefaults(t *testing.T) {
	dialer := &fakeDialer{conn: &fakeGATT{writable: true}}
	b := NewBLE(BLEConfig{}, dialer)

	require.NoError(t, b.Connect(context.Background()))
	assert.Equal(t, DefaultDeviceName, dialer.cfg.DeviceName)
	assert.Equal(t, DefaultServiceUUID, dialer.cfg.ServiceUUID)
	assert.Equal(t, DefaultRXUUID, dialer.cfg.RXUUID)
	assert.Equal(t, DefaultTXUUID, dialer.cfg.TXUUID)
	assert.Equal(t, DefaultScanTimeout, dialer.cfg.ScanTimeout)
	assert.Equal(t, device.TransportBluetooth, b.Kind())
}

func TestBLENotificationsBecomeReads(t *testing.T) {
	dialer := &fakeDialer{conn: &fakeGATT{writable: true}}
	b := NewBLE(BLEConfig{}, dialer)
	require.NoError(t, b.Connect(context.Background()))

	dialer.notify([]byte(`{"type":"meta`))
	dialer.notify([]byte("data\"}\n"))

	buf := make([]byte, 64)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"meta`, string(buf[:n]))

	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "data\"}\n", string(buf[:n]))
}

func TestBLEReadKeepsRemainder(t *testing.T) {
	dialer := &fakeDialer{conn: &fakeGATT{writable: true}}
	b := NewBLE(BLEConfig{}, dialer)
	require.NoError(t, b.Connect(context.Background()))

	dialer.notify([]byte("abcdef"))

	small := make([]byte, 4)
	n, err := b.Read(small)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(small[:n]))

	n, err = b.Read(small)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(small[:n]))
}

func TestBLESendCommand(t *testing.T) {
	conn := &fakeGATT{writable: true}
	b := NewBLE(BLEConfig{}, &fakeDialer{conn: conn})
	require.NoError(t, b.Connect(context.Background()))

	require.NoError(t, b.SendCommand(context.Background(), []byte("MODE:1\n")))
	assert.Equal(t, [][]byte{[]byte("MODE:1\n")}, conn.written)
}

func TestBLESendCommandNotWritable(t *testing.T) {
	b := NewBLE(BLEConfig{}, &fakeDialer{conn: &fakeGATT{writable: false}})
	require.NoError(t, b.Connect(context.Background()))

	err := b.SendCommand(context.Background(), []byte("MODE:2\n"))
	assert.ErrorIs(t, err, device.ErrNotWritable)
}

func TestBLEConnectFailure(t *testing.T) {
	dialErr := errors.New("adapter off")
	b := NewBLE(BLEConfig{}, &fakeDialer{err: dialErr})

	assert.ErrorIs(t, b.Connect(context.Background()), dialErr)
	assert.ErrorIs(t, b.SendCommand(context.Background(), []byte("MODE:1\n")), device.ErrNotConnected)
}

func TestBLEDisconnectCancelsRead(t *testing.T) {
	conn := &fakeGATT{writable: true}
	b := NewBLE(BLEConfig{}, &fakeDialer{conn: conn})
	require.NoError(t, b.Connect(context.Background()))

	readErr := make(chan error, 1)
	go func() {
		_, err := b.Read(make([]byte, 8))
		readErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Disconnect())

	select {
	case err := <-readErr:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("pending read was not cancelled by disconnect")
	}

	assert.NoError(t, b.Disconnect())
	assert.Equal(t, 1, conn.closes)
}

func TestBLEDisconnectBeforeConnect(t *testing.T) {
	b := NewBLE(BLEConfig{}, &fakeDialer{conn: &fakeGATT{}})

	assert.NoError(t, b.Disconnect())
	_, err := b.Read(make([]byte, 8))
	assert.ErrorIs(t, err, io.EOF)
}

func TestBLEDisconnectWhileDialing(t *testing.T) {
	conn := &fakeGATT{writable: true}
	dialer := &fakeDialer{conn: conn, blockCh: make(chan struct{})}
	b := NewBLE(BLEConfig{}, dialer)

	connectErr := make(chan error, 1)
	go func() { connectErr <- b.Connect(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Disconnect())
	close(dialer.blockCh)

	select {
	case err := <-connectErr:
		assert.ErrorIs(t, err, device.ErrConnectAborted)
	case <-time.After(time.Second):
		t.Fatal("connect did not return")
	}
	assert.Equal(t, 1, conn.closes, "connection opened after disconnect must be released")
}

func TestBLEPeripheralLostEndsRead(t *testing.T) {
	conn := &fakeGATT{writable: true, lost: make(chan struct{}), closeErr: errors.New("not connected")}
	dialer := &fakeDialer{conn: conn}
	b := NewBLE(BLEConfig{}, dialer)
	require.NoError(t, b.Connect(context.Background()))

	dialer.notify([]byte("last\n"))
	close(conn.lost)

	buf := make([]byte, 16)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "last\n", string(buf[:n]), "queued data is read before the end of stream")

	_, err = b.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	// Closing a connection the peripheral already dropped is not a failure.
	assert.NoError(t, b.Disconnect())
	assert.Equal(t, 1, conn.closes)
}

func TestBLEPeripheralLostDisconnectsLink(t *testing.T) {
	conn := &fakeGATT{writable: true, lost: make(chan struct{})}
	l := link.New()
	t.Cleanup(func() { _ = l.Disconnect() })

	require.NoError(t, l.ConnectTransport(context.Background(), NewBLE(BLEConfig{}, &fakeDialer{conn: conn})))
	require.Equal(t, device.StateConnected, l.State())

	close(conn.lost)

	require.Eventually(t, func() bool { return l.State() == device.StateDisconnected }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, conn.closes)
}
