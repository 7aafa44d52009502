package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/device"
)

// Nordic UART service layout used by the tester firmware. RX is written by
// the host, TX notifies the host.
const (
	DefaultServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	DefaultRXUUID      = "6e400002-b5a3-f393-e0a9-e50e24dcca9e"
	DefaultTXUUID      = "6e400003-b5a3-f393-e0a9-e50e24dcca9e"
	DefaultDeviceName  = "ShutterTester"
	DefaultScanTimeout = 10 * time.Second
)

// notifyQueueSize bounds the notifications buffered ahead of the reader.
const notifyQueueSize = 256

// BLEConfig identifies the peripheral and its UART-style service.
type BLEConfig struct {
	DeviceName  string
	ServiceUUID string
	RXUUID      string
	TXUUID      string
	ScanTimeout time.Duration
}

func (c BLEConfig) withDefaults() BLEConfig {
	if c.DeviceName == "" {
		c.DeviceName = DefaultDeviceName
	}
	if c.ServiceUUID == "" {
		c.ServiceUUID = DefaultServiceUUID
	}
	if c.RXUUID == "" {
		c.RXUUID = DefaultRXUUID
	}
	if c.TXUUID == "" {
		c.TXUUID = DefaultTXUUID
	}
	if c.ScanTimeout <= 0 {
		c.ScanTimeout = DefaultScanTimeout
	}
	return c
}

// GATTConn is an open connection to the peripheral.
type GATTConn interface {
	// Write sends p to the command characteristic. It returns
	// device.ErrNotWritable when the peripheral exposes none.
	Write(p []byte) (int, error)
	// Done is closed when the peripheral drops the connection on its own.
	Done() <-chan struct{}
	Close() error
}

// Dialer finds and connects to the peripheral, subscribing notify to the
// data characteristic.
type Dialer interface {
	Dial(ctx context.Context, cfg BLEConfig, notify func([]byte)) (GATTConn, error)
}

// BLE is the wireless-link transport. Notifications are queued as chunks
// and handed out by Read, so the link layer frames them exactly like
// serial output.
type BLE struct {
	cfg    BLEConfig
	dialer Dialer

	mu     sync.Mutex
	conn   GATTConn
	chunks chan []byte
	closed chan struct{}
	gone   chan struct{}

	// pending is the unread remainder of the last chunk. Only Read touches it.
	pending []byte

	writeMu sync.Mutex
}

// NewBLE creates a wireless link using dialer.
func NewBLE(cfg BLEConfig, dialer Dialer) *BLE {
	return &BLE{
		cfg:    cfg.withDefaults(),
		dialer: dialer,
	}
}

// BLEFactory returns a device.Factory creating wireless links.
func BLEFactory(cfg BLEConfig, dialer Dialer) device.Factory {
	return func() (device.Transport, error) {
		return NewBLE(cfg, dialer), nil
	}
}

// Config returns the effective configuration.
func (b *BLE) Config() BLEConfig {
	return b.cfg
}

func (b *BLE) Kind() device.TransportKind {
	return device.TransportBluetooth
}

// Connect scans for the peripheral and subscribes to its notifications.
func (b *BLE) Connect(ctx context.Context) error {
	b.mu.Lock()
	if b.conn != nil {
		b.mu.Unlock()
		return nil
	}
	chunks := make(chan []byte, notifyQueueSize)
	closed := make(chan struct{})
	gone := make(chan struct{})
	b.chunks = chunks
	b.closed = closed
	b.gone = gone
	b.pending = nil
	b.mu.Unlock()

	notify := func(buf []byte) {
		chunk := append([]byte(nil), buf...)
		select {
		case chunks <- chunk:
		case <-closed:
		}
	}

	log.Info().Str("name", b.cfg.DeviceName).Msg("Scanning for BLE peripheral")

	conn, err := b.dialer.Dial(ctx, b.cfg, notify)
	if err != nil {
		return fmt.Errorf("connect to %q: %w", b.cfg.DeviceName, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-closed:
		// Disconnect ran while dialing.
		_ = conn.Close()
		return device.ErrConnectAborted
	default:
	}
	b.conn = conn

	go b.watch(conn.Done(), closed, gone)

	log.Info().Str("name", b.cfg.DeviceName).Msg("BLE peripheral connected")

	return nil
}

// watch closes gone when the peripheral drops, ending Read once the queued
// notifications are consumed.
func (b *BLE) watch(lost <-chan struct{}, closed, gone chan struct{}) {
	select {
	case <-lost:
		log.Warn().Str("name", b.cfg.DeviceName).Msg("BLE peripheral lost")
		close(gone)
	case <-closed:
	}
}

// Disconnect closes the notification queue, waking Read, and drops the
// GATT connection.
func (b *BLE) Disconnect() error {
	b.mu.Lock()
	conn, gone := b.conn, b.gone
	b.conn = nil
	if b.closed != nil {
		select {
		case <-b.closed:
		default:
			close(b.closed)
		}
	}
	b.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !isClosed(gone) {
		return fmt.Errorf("disconnect from %q: %w", b.cfg.DeviceName, err)
	}

	log.Info().Str("name", b.cfg.DeviceName).Msg("BLE peripheral disconnected")
	return nil
}

// SendCommand writes cmd to the command characteristic.
func (b *BLE) SendCommand(ctx context.Context, cmd []byte) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return device.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := conn.Write(cmd)
	if err != nil {
		return fmt.Errorf("write to %q: %w", b.cfg.DeviceName, err)
	}
	if n < len(cmd) {
		return fmt.Errorf("write to %q: %w", b.cfg.DeviceName, io.ErrShortWrite)
	}
	return nil
}

// Read returns the next notification payload. It must not be called
// concurrently.
func (b *BLE) Read(p []byte) (int, error) {
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}

	b.mu.Lock()
	chunks, closed, gone := b.chunks, b.closed, b.gone
	b.mu.Unlock()

	if chunks == nil {
		return 0, io.EOF
	}

	select {
	case chunk := <-chunks:
		return b.deliver(p, chunk), nil
	case <-closed:
		return 0, io.EOF
	case <-gone:
		select {
		case chunk := <-chunks:
			return b.deliver(p, chunk), nil
		default:
			return 0, io.EOF
		}
	}
}

func (b *BLE) deliver(p, chunk []byte) int {
	n := copy(p, chunk)
	if n < len(chunk) {
		b.pending = chunk[n:]
	}
	return n
}

func isClosed(ch chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
