// Package link implements the device connection lifecycle: it owns one
// active transport at a time, frames and validates what the device sends,
// delivers messages to a single handler and writes mode commands back.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

const readBufferSize = 4096

// Handler receives every validated message, synchronously from the read
// loop. It must not call Disconnect on the same goroutine.
type Handler func(msg protocol.Message)

// StateFunc observes state transitions, in the order they happen. It runs
// outside the link's locks but must not call Connect or Disconnect on the
// same goroutine.
type StateFunc func(from, to device.State, kind device.TransportKind)

// Status is a snapshot of the link.
type Status struct {
	State     device.State
	Transport device.TransportKind
	Session   string
	Since     time.Time
}

// Link is the device connection state machine.
type Link struct {
	log     zerolog.Logger
	decoder *protocol.Decoder
	metrics *Metrics

	factoriesMu sync.RWMutex
	factories   map[device.TransportKind]device.Factory

	mu        sync.Mutex
	state     device.State
	kind      device.TransportKind
	transport device.Transport
	session   string
	since     time.Time
	gen       uint64
	cancel    context.CancelFunc
	loopDone  chan struct{}
	releasing chan struct{} // non-nil while a transport is being torn down

	// writeMu admits one command at a time; it is never held by the read loop.
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handler   Handler
	handlerID uint64

	observersMu sync.RWMutex
	observers   []StateFunc

	// Transitions are numbered under mu and handed to observers in that order.
	issued    uint64
	notifyMu  sync.Mutex
	notified  *sync.Cond
	delivered uint64
}

// transition is a state change waiting to be delivered to observers.
type transition struct {
	from, to device.State
	kind     device.TransportKind
	seq      uint64
}

// Option configures a Link.
type Option func(*Link)

// WithLogger sets the logger used for transitions and device diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Link) {
		l.log = logger
	}
}

// WithMetrics records link activity in m.
func WithMetrics(m *Metrics) Option {
	return func(l *Link) {
		l.metrics = m
	}
}

// WithDecoder replaces the message decoder.
func WithDecoder(d *protocol.Decoder) Option {
	return func(l *Link) {
		l.decoder = d
	}
}

// New creates a disconnected Link.
func New(opts ...Option) *Link {
	l := &Link{
		log:       log.Logger,
		factories: make(map[device.TransportKind]device.Factory),
		since:     time.Now(),
	}
	l.notified = sync.NewCond(&l.notifyMu)
	for _, opt := range opts {
		opt(l)
	}
	if l.decoder == nil {
		l.decoder = protocol.NewDecoder(nil)
	}
	l.metrics.setState(device.StateDisconnected)
	return l
}

// Register makes a transport kind available to Connect. Each connect builds
// a fresh transport from f.
func (l *Link) Register(kind device.TransportKind, f device.Factory) {
	l.factoriesMu.Lock()
	defer l.factoriesMu.Unlock()
	l.factories[kind] = f
}

// Connect creates a transport of the given kind and connects it.
func (l *Link) Connect(ctx context.Context, kind device.TransportKind) error {
	l.factoriesMu.RLock()
	f, ok := l.factories[kind]
	l.factoriesMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrUnknownTransport, kind)
	}

	return l.ConnectWith(ctx, kind, f)
}

// ConnectWith connects a transport built by f, for this attempt only. The
// factory registered for kind is left in place.
func (l *Link) ConnectWith(ctx context.Context, kind device.TransportKind, f device.Factory) error {
	t, err := f()
	if err != nil {
		l.metrics.recordConnect(kind, "failed")
		return fmt.Errorf("%w: %s: %w", device.ErrConnectFailed, kind, err)
	}
	return l.ConnectTransport(ctx, t)
}

// ConnectTransport attaches t and starts reading from it. It fails with
// device.ErrBusy while another attempt is pending and with
// device.ErrAlreadyConnected when a different kind of transport is active.
// Connecting the same kind again tears the active transport down first.
func (l *Link) ConnectTransport(ctx context.Context, t device.Transport) error {
	kind := t.Kind()

	gen, connCtx, cancel, err := l.begin(ctx, kind, t)
	if err != nil {
		return err
	}
	defer cancel()

	l.log.Info().Str("transport", string(kind)).Msg("Connecting to device")

	err = t.Connect(connCtx)

	l.mu.Lock()
	if l.gen != gen {
		// Disconnect ran while we were connecting.
		l.mu.Unlock()
		_ = t.Disconnect()
		l.metrics.recordConnect(kind, "aborted")
		l.log.Info().Str("transport", string(kind)).Msg("Connect aborted")
		return device.ErrConnectAborted
	}

	if err != nil {
		l.gen++
		l.transport = nil
		l.cancel = nil
		tr := l.setStateLocked(device.StateDisconnected)
		l.mu.Unlock()

		_ = t.Disconnect()
		l.notify(tr)
		l.metrics.recordConnect(kind, "failed")
		l.log.Warn().Err(err).Str("transport", string(kind)).Msg("Connect failed")
		return fmt.Errorf("%w: %s: %w", device.ErrConnectFailed, kind, err)
	}

	loopCtx, loopCancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	session := uuid.NewString()
	l.cancel = loopCancel
	l.loopDone = done
	l.session = session
	tr := l.setStateLocked(device.StateConnected)
	l.mu.Unlock()

	l.metrics.recordConnect(kind, "ok")
	l.log.Info().Str("transport", string(kind)).Str("session", session).Msg("Device connected")

	go l.readLoop(loopCtx, gen, t, session, done)

	l.notify(tr)
	return nil
}

// begin moves the link into Connecting with t attached, first tearing down
// an active transport of the same kind.
func (l *Link) begin(ctx context.Context, kind device.TransportKind, t device.Transport) (uint64, context.Context, context.CancelFunc, error) {
	for {
		l.mu.Lock()
		if released := l.releasing; released != nil {
			l.mu.Unlock()
			select {
			case <-released:
				continue
			case <-ctx.Done():
				return 0, nil, nil, ctx.Err()
			}
		}

		switch l.state {
		case device.StateConnecting:
			l.mu.Unlock()
			return 0, nil, nil, device.ErrBusy
		case device.StateConnected:
			active := l.kind
			l.mu.Unlock()
			if active != kind {
				return 0, nil, nil, fmt.Errorf("%w: %s link is active", device.ErrAlreadyConnected, active)
			}
			l.log.Info().Str("transport", string(kind)).Msg("Reconnecting, releasing previous transport")
			if err := l.Disconnect(); err != nil {
				l.log.Warn().Err(err).Msg("Releasing previous transport")
			}
			continue
		}

		connCtx, cancel := context.WithCancel(ctx)
		l.gen++
		gen := l.gen
		l.kind = kind
		l.transport = t
		l.cancel = cancel
		l.session = ""
		tr := l.setStateLocked(device.StateConnecting)
		l.mu.Unlock()

		l.notify(tr)
		return gen, connCtx, cancel, nil
	}
}

// Disconnect tears down the active transport. It is a no-op when already
// disconnected and waits for a teardown already in progress.
func (l *Link) Disconnect() error {
	l.mu.Lock()
	if released := l.releasing; released != nil {
		l.mu.Unlock()
		<-released
		return nil
	}
	if l.state == device.StateDisconnected {
		l.mu.Unlock()
		return nil
	}

	l.gen++
	t, cancel, loopDone := l.transport, l.cancel, l.loopDone
	released := make(chan struct{})
	l.releasing = released
	l.mu.Unlock()

	err := l.release(t, cancel, loopDone)
	l.finish(released, "disconnect requested")

	if err != nil {
		return fmt.Errorf("release %s transport: %w", t.Kind(), err)
	}
	return nil
}

// release cancels the read loop, closes t (waking a blocked Read) and waits
// for the loop and any in-flight command to finish.
func (l *Link) release(t device.Transport, cancel context.CancelFunc, loopDone chan struct{}) error {
	if cancel != nil {
		cancel()
	}
	var err error
	if t != nil {
		err = t.Disconnect()
	}
	if loopDone != nil {
		<-loopDone
	}
	// Wait out an in-flight command.
	l.writeMu.Lock()
	l.writeMu.Unlock()
	return err
}

// finish completes a teardown started under l.mu.
func (l *Link) finish(released chan struct{}, reason string) {
	l.mu.Lock()
	kind, session := l.kind, l.session
	l.transport = nil
	l.cancel = nil
	l.loopDone = nil
	l.session = ""
	l.releasing = nil
	tr := l.setStateLocked(device.StateDisconnected)
	l.mu.Unlock()

	close(released)

	l.notify(tr)
	l.log.Info().Str("transport", string(kind)).Str("session", session).Str("reason", reason).Msg("Device disconnected")
}

// SendMode writes the command selecting mode. Only valid while connected;
// a failed write leaves the link connected.
func (l *Link) SendMode(ctx context.Context, mode device.Mode) error {
	cmd, err := protocol.EncodeMode(mode)
	if err != nil {
		return err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	state, t, kind := l.state, l.transport, l.kind
	tearingDown := l.releasing != nil
	l.mu.Unlock()

	if state != device.StateConnected || tearingDown {
		l.metrics.recordCommand(mode, "not_connected")
		return device.ErrNotConnected
	}

	if err := t.SendCommand(ctx, cmd); err != nil {
		l.metrics.recordCommand(mode, "failed")
		l.log.Warn().Err(err).Str("transport", string(kind)).Stringer("mode", mode).Msg("Mode command failed")
		return fmt.Errorf("%w: %s: %w", device.ErrWriteFailed, mode, err)
	}

	l.metrics.recordCommand(mode, "ok")
	l.log.Info().Str("transport", string(kind)).Stringer("mode", mode).Msg("Mode command sent")
	return nil
}

// SendViewMode sends the device mode that view requires.
func (l *Link) SendViewMode(ctx context.Context, view device.ViewMode) error {
	if _, err := device.ParseViewMode(string(view)); err != nil {
		return err
	}
	return l.SendMode(ctx, view.DeviceMode())
}

// OnMessage registers h as the only message handler, replacing any earlier
// one. The returned func unregisters h if it is still current.
func (l *Link) OnMessage(h Handler) (unregister func()) {
	l.handlerMu.Lock()
	l.handlerID++
	id := l.handlerID
	l.handler = h
	l.handlerMu.Unlock()

	return func() {
		l.handlerMu.Lock()
		defer l.handlerMu.Unlock()
		if l.handlerID == id {
			l.handler = nil
		}
	}
}

// OnStateChange adds an observer of state transitions.
func (l *Link) OnStateChange(fn StateFunc) {
	l.observersMu.Lock()
	defer l.observersMu.Unlock()
	l.observers = append(l.observers, fn)
}

// State returns the current connection state.
func (l *Link) State() device.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Kind returns the kind of the attached transport, or "" when disconnected.
func (l *Link) Kind() device.TransportKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == device.StateDisconnected {
		return ""
	}
	return l.kind
}

// Session returns the id of the current connection, or "" when not connected.
func (l *Link) Session() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// Status returns a snapshot of the link.
func (l *Link) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Status{State: l.state, Session: l.session, Since: l.since}
	if l.state != device.StateDisconnected {
		s.Transport = l.kind
	}
	return s
}

// setStateLocked moves to the new state and numbers the transition. Every
// transition it returns must be passed to notify.
func (l *Link) setStateLocked(to device.State) transition {
	tr := transition{from: l.state, to: to, kind: l.kind}
	if tr.from != to {
		l.state = to
		l.since = time.Now()
	}
	l.metrics.setState(to)
	l.issued++
	tr.seq = l.issued
	return tr
}

// notify waits for every earlier transition to reach the observers, then
// delivers tr.
func (l *Link) notify(tr transition) {
	l.notifyMu.Lock()
	for l.delivered+1 != tr.seq {
		l.notified.Wait()
	}
	l.notifyMu.Unlock()

	if tr.from != tr.to {
		l.observersMu.RLock()
		observers := make([]StateFunc, len(l.observers))
		copy(observers, l.observers)
		l.observersMu.RUnlock()

		for _, fn := range observers {
			fn(tr.from, tr.to, tr.kind)
		}
	}

	l.notifyMu.Lock()
	l.delivered = tr.seq
	l.notified.Broadcast()
	l.notifyMu.Unlock()
}

// readLoop pulls chunks from t until it ends or the link cancels ctx.
func (l *Link) readLoop(ctx context.Context, gen uint64, t device.Transport, session string, done chan struct{}) {
	defer close(done)

	logger := l.log.With().Str("transport", string(t.Kind())).Str("session", session).Logger()
	framer := protocol.NewFramer()
	buf := make([]byte, readBufferSize)

	for {
		n, err := t.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				if ctx.Err() != nil {
					return
				}
				l.handleLine(logger, line)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.dropped(gen, t, err, framer.Pending())
			return
		}
	}
}

// handleLine classifies one framed line and delivers it if it decodes.
func (l *Link) handleLine(logger zerolog.Logger, raw string) {
	line, class := protocol.Classify(raw)
	l.metrics.recordLine(class)

	switch class {
	case protocol.LineEmpty:
		return
	case protocol.LineDiagnostic:
		logger.Debug().Str("line", line).Msg("Device output")
		return
	}

	msg, err := l.decoder.Decode([]byte(line))
	if err != nil {
		l.metrics.recordRejected(err)
		logger.Debug().Err(err).Str("line", line).Msg("Discarded device message")
		return
	}
	l.metrics.recordMessage(msg.Type())

	l.handlerMu.RLock()
	h := l.handler
	l.handlerMu.RUnlock()

	if h != nil {
		h(msg)
	}
}

// dropped handles the transport ending on its own. It is a no-op if a
// Disconnect or reconnect already owns the teardown.
func (l *Link) dropped(gen uint64, t device.Transport, cause error, pending int) {
	l.mu.Lock()
	if l.gen != gen || l.releasing != nil {
		l.mu.Unlock()
		return
	}
	l.gen++
	cancel := l.cancel
	released := make(chan struct{})
	l.releasing = released
	l.mu.Unlock()

	ev := l.log.Info()
	if !errors.Is(cause, io.EOF) {
		ev = l.log.Warn().Err(cause)
	}
	ev.Str("transport", string(t.Kind())).Int("discarded_bytes", pending).Msg("Device stream ended")

	// The loop is exiting; only the transport and writer need releasing.
	if err := l.release(t, cancel, nil); err != nil {
		l.log.Warn().Err(err).Str("transport", string(t.Kind())).Msg("Releasing transport")
	}
	l.finish(released, "stream ended")
}
