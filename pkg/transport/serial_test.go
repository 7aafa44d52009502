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
	"go.bug.st/serial"
)

// fakePort is an in-memory Port whose Read blocks until data or Close.
type fakePort struct {
	mu       sync.Mutex
	data     chan []byte
	closed   chan struct{}
	written  [][]byte
	writeErr error
	closes   int
}

func newFakePort() *fakePort {
	return &fakePort{
		data:   make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case d := <-p.data:
		return copy(b, d), nil
	case <-p.closed:
		return 0, errors.New("Port has been closed")
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	return len(b), nil
}

func (p *fakePort) Drain() error { return nil }

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

func openerFor(p *fakePort, gotMode **serial.Mode) Opener {
	return func(path string, mode *serial.Mode) (Port, error) {
		if gotMode != nil {
			*gotMode = mode
		}
		return p, nil
	}
}

func TestSerialConnectUsesFixedMode(t *testing.T) {
	var mode *serial.Mode
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(newFakePort(), &mode)))

	require.NoError(t, s.Connect(context.Background()))
	require.NotNil(t, mode)
	assert.Equal(t, DefaultBaudRate, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, device.TransportUSB, s.Kind())
}

func TestSerialConnectFailure(t *testing.T) {
	openErr := errors.New("permission denied")
	s := NewSerial("/dev/ttyUSB0", 9600, WithOpener(func(string, *serial.Mode) (Port, error) {
		return nil, openErr
	}))

	err := s.Connect(context.Background())
	assert.ErrorIs(t, err, openErr)

	// Still safe to tear down.
	assert.NoError(t, s.Disconnect())
}

func TestSerialReadAndWrite(t *testing.T) {
	port := newFakePort()
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(port, nil)))
	require.NoError(t, s.Connect(context.Background()))

	port.data <- []byte("hello\n")
	buf := make([]byte, 64)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(buf[:n]))

	require.NoError(t, s.SendCommand(context.Background(), []byte("MODE:2\n")))
	assert.Equal(t, [][]byte{[]byte("MODE:2\n")}, port.written)
}

func TestSerialWriteFailureReleasesLock(t *testing.T) {
	port := newFakePort()
	port.writeErr = errors.New("io error")
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(port, nil)))
	require.NoError(t, s.Connect(context.Background()))

	assert.Error(t, s.SendCommand(context.Background(), []byte("MODE:1\n")))

	port.mu.Lock()
	port.writeErr = nil
	port.mu.Unlock()

	// A second write must not deadlock on the write lock.
	done := make(chan error, 1)
	go func() { done <- s.SendCommand(context.Background(), []byte("MODE:1\n")) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("write lock was not released after failure")
	}
}

func TestSerialDisconnectCancelsRead(t *testing.T) {
	port := newFakePort()
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(port, nil)))
	require.NoError(t, s.Connect(context.Background()))

	readErr := make(chan error, 1)
	go func() {
		_, err := s.Read(make([]byte, 8))
		readErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Disconnect())

	select {
	case err := <-readErr:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("pending read was not cancelled by disconnect")
	}
}

func TestSerialDisconnectIdempotent(t *testing.T) {
	port := newFakePort()
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(port, nil)))

	assert.NoError(t, s.Disconnect(), "disconnect before connect")

	require.NoError(t, s.Connect(context.Background()))
	assert.NoError(t, s.Disconnect())
	assert.NoError(t, s.Disconnect())
	assert.Equal(t, 1, port.closes)
}

func TestSerialNotConnected(t *testing.T) {
	s := NewSerial("/dev/ttyUSB0", 0, WithOpener(openerFor(newFakePort(), nil)))

	assert.ErrorIs(t, s.SendCommand(context.Background(), []byte("MODE:1\n")), device.ErrNotConnected)

	_, err := s.Read(make([]byte, 8))
	assert.ErrorIs(t, err, io.EOF)
}

func TestSerialFactoryRequiresPath(t *testing.T) {
	_, err := SerialFactory("", 0)()
	assert.ErrorIs(t, err, device.ErrUnavailable)

	tr, err := SerialFactory("/dev/ttyACM0", 0)()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", tr.(*Serial).Path())
}
