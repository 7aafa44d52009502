// Package devicetest provides an in-memory Transport for exercising the link
// layer without hardware.
package devicetest

import (
	"context"
	"io"
	"sync"

	"github.com/urmzd/shutterlink/pkg/device"
)

// FakeTransport is a scriptable device.Transport. Chunks queued with Feed are
// returned by Read one at a time; End makes Read report end of stream.
type FakeTransport struct {
	kind device.TransportKind

	mu          sync.Mutex
	connectErr  error
	writeErr    error
	writable    bool
	connected   bool
	connects    int
	disconnects int
	writes      [][]byte

	chunks  chan []byte
	done    chan struct{}
	pending []byte
}

// NewFake creates a writable fake transport of the given kind.
func NewFake(kind device.TransportKind) *FakeTransport {
	return &FakeTransport{
		kind:     kind,
		writable: true,
		chunks:   make(chan []byte, 64),
		done:     make(chan struct{}),
	}
}

// Factory returns a device.Factory that always hands out f.
func (f *FakeTransport) Factory() device.Factory {
	return func() (device.Transport, error) { return f, nil }
}

// FailConnect makes the next Connect calls return err.
func (f *FakeTransport) FailConnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// FailWrites makes SendCommand return err.
func (f *FakeTransport) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// SetWritable toggles whether the fake exposes a writable channel.
func (f *FakeTransport) SetWritable(w bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writable = w
}

// Feed queues chunks of device output.
func (f *FakeTransport) Feed(chunks ...string) {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	for _, c := range chunks {
		select {
		case f.chunks <- []byte(c):
		case <-done:
			return
		}
	}
}

// End simulates the device closing the stream.
func (f *FakeTransport) End() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endLocked()
}

func (f *FakeTransport) endLocked() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// Writes returns a copy of every command written so far.
func (f *FakeTransport) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// Connects returns how many times Connect succeeded.
func (f *FakeTransport) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Disconnects returns how many times Disconnect was called.
func (f *FakeTransport) Disconnects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

// Connected reports whether the fake is currently open.
func (f *FakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeTransport) Kind() device.TransportKind {
	return f.kind
}

func (f *FakeTransport) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// A fake may be reused across reconnects; give it a fresh stream.
	select {
	case <-f.done:
		f.done = make(chan struct{})
	default:
	}
	f.connected = true
	f.connects++
	return nil
}

func (f *FakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.connected = false
	f.endLocked()
	return nil
}

func (f *FakeTransport) SendCommand(ctx context.Context, cmd []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return device.ErrNotConnected
	}
	if !f.writable {
		return device.ErrNotWritable
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), cmd...))
	return nil
}

func (f *FakeTransport) Read(p []byte) (int, error) {
	f.mu.Lock()
	done := f.done
	if len(f.pending) > 0 {
		n := copy(p, f.pending)
		f.pending = f.pending[n:]
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()

	select {
	case c := <-f.chunks:
		return f.deliver(p, c), nil
	case <-done:
		// Drain anything queued before the stream ended.
		select {
		case c := <-f.chunks:
			return f.deliver(p, c), nil
		default:
		}
		return 0, io.EOF
	}
}

func (f *FakeTransport) deliver(p, c []byte) int {
	n := copy(p, c)
	if n < len(c) {
		f.mu.Lock()
		f.pending = append(f.pending, c[n:]...)
		f.mu.Unlock()
	}
	return n
}
