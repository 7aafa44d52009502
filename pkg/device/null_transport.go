package device

import (
	"context"
	"io"
)

// NullTransport is a transport that can never connect. It stands in for a
// transport kind that is disabled in the active configuration.
type NullTransport struct {
	kind TransportKind
}

// NewNullTransport creates a new NullTransport for the given kind.
func NewNullTransport(kind TransportKind) *NullTransport {
	return &NullTransport{kind: kind}
}

// NullFactory returns a Factory producing NullTransports.
func NullFactory(kind TransportKind) Factory {
	return func() (Transport, error) {
		return NewNullTransport(kind), nil
	}
}

func (t *NullTransport) Kind() TransportKind {
	return t.kind
}

func (t *NullTransport) Connect(ctx context.Context) error {
	return ErrUnavailable
}

func (t *NullTransport) Disconnect() error {
	return nil
}

func (t *NullTransport) SendCommand(ctx context.Context, cmd []byte) error {
	return ErrNotConnected
}

func (t *NullTransport) Read(p []byte) (int, error) {
	return 0, io.EOF
}
