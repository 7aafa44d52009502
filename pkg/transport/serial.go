package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/device"
	"go.bug.st/serial"
)

// DefaultBaudRate is the rate the tester firmware opens its USB UART at.
const DefaultBaudRate = 115200

// Port is the subset of serial.Port used by the stream link.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// Opener opens the serial device at path.
type Opener func(path string, mode *serial.Mode) (Port, error)

func openSerial(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Serial is the stream-link transport over a USB serial port.
type Serial struct {
	path string
	mode *serial.Mode
	open Opener

	mu     sync.Mutex
	port   Port
	closed bool

	// writeMu serialises commands; only one writer at a time.
	writeMu sync.Mutex
}

// SerialOption configures a Serial transport.
type SerialOption func(*Serial)

// WithOpener replaces the function used to open the port.
func WithOpener(open Opener) SerialOption {
	return func(s *Serial) {
		s.open = open
	}
}

// NewSerial creates a stream link for the port at path, 8N1 at baud.
// A non-positive baud uses DefaultBaudRate.
func NewSerial(path string, baud int, opts ...SerialOption) *Serial {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	s := &Serial{
		path: path,
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: openSerial,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SerialFactory returns a device.Factory creating stream links for path.
func SerialFactory(path string, baud int, opts ...SerialOption) device.Factory {
	return func() (device.Transport, error) {
		if path == "" {
			return nil, fmt.Errorf("%w: no serial port configured", device.ErrUnavailable)
		}
		return NewSerial(path, baud, opts...), nil
	}
}

// Path returns the device path of the port.
func (s *Serial) Path() string {
	return s.path
}

func (s *Serial) Kind() device.TransportKind {
	return device.TransportUSB
}

// Connect opens the serial port. Connecting an open port is a no-op.
func (s *Serial) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}

	port, err := s.open(s.path, s.mode)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.path, err)
	}
	s.port = port
	s.closed = false

	log.Info().Str("port", s.path).Int("baud", s.mode.BaudRate).Msg("Serial port opened")

	return nil
}

// Disconnect closes the port, waking a Read blocked on it.
func (s *Serial) Disconnect() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.closed = true
	s.mu.Unlock()

	if port == nil {
		return nil
	}
	if err := port.Close(); err != nil {
		return fmt.Errorf("close serial port %s: %w", s.path, err)
	}

	log.Info().Str("port", s.path).Msg("Serial port closed")
	return nil
}

// SendCommand writes cmd and waits for it to leave the output buffer.
func (s *Serial) SendCommand(ctx context.Context, cmd []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	if port == nil {
		return device.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := port.Write(cmd)
	if err != nil {
		return fmt.Errorf("write serial port %s: %w", s.path, err)
	}
	if n < len(cmd) {
		return fmt.Errorf("write serial port %s: %w", s.path, io.ErrShortWrite)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("drain serial port %s: %w", s.path, err)
	}
	return nil
}

// Read blocks until bytes arrive. A zero-byte read without a timeout means
// the device went away and is reported as io.EOF, as is any read after
// Disconnect.
func (s *Serial) Read(p []byte) (int, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()

	if port == nil {
		return 0, io.EOF
	}

	n, err := port.Read(p)
	if err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return n, io.EOF
		}
		return n, fmt.Errorf("read serial port %s: %w", s.path, err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
