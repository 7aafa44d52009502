package device

import "context"

// Transport defines the capability set shared by every physical link to the
// shutter tester. The link layer depends only on this interface so serial,
// Bluetooth and fake transports are interchangeable.
type Transport interface {
	// Kind identifies the transport variant
	Kind() TransportKind

	// Connect opens the underlying link
	Connect(ctx context.Context) error

	// Disconnect closes the link and wakes any blocked Read. It is safe to
	// call more than once and before Connect.
	Disconnect() error

	// SendCommand writes a single encoded command to the device
	SendCommand(ctx context.Context, cmd []byte) error

	// Read blocks until device output is available. It returns io.EOF once
	// the stream has ended or the transport was disconnected.
	Read(p []byte) (int, error)
}

// Factory creates a fresh, unconnected Transport.
type Factory func() (Transport, error)
