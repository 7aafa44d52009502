// Package session ties a device link to the application: it routes
// measurements, keeps the shutter orientation setting up to date, and
// broadcasts events to UI clients.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/link"
	"github.com/urmzd/shutterlink/pkg/orientation"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

const (
	subscriberBuffer = 32
	settingsTimeout  = 2 * time.Second
)

// Link is the part of link.Link a session drives.
type Link interface {
	Connect(ctx context.Context, kind device.TransportKind) error
	ConnectWith(ctx context.Context, kind device.TransportKind, f device.Factory) error
	Disconnect() error
	SendViewMode(ctx context.Context, view device.ViewMode) error
	OnMessage(h link.Handler) func()
	OnStateChange(fn link.StateFunc)
	Status() link.Status
}

// SettingsStore persists the user settings the session reads and updates.
type SettingsStore interface {
	Orientation(ctx context.Context) (device.Orientation, error)
	SetOrientation(ctx context.Context, o device.Orientation) error
	ViewMode(ctx context.Context) (device.ViewMode, error)
	SetViewMode(ctx context.Context, v device.ViewMode) error
}

// Status is the link status together with the current settings.
type Status struct {
	Link        link.Status
	ViewMode    device.ViewMode
	Orientation device.Orientation
}

// Session is the application side of one device link.
type Session struct {
	link     Link
	settings SettingsStore
	serial   func(port string) device.Factory
	log      zerolog.Logger

	mu     sync.RWMutex
	latest Latest

	subscribersMu sync.Mutex
	subscribers   []chan Event
	closed        bool

	startOnce  sync.Once
	unregister func()
}

// Option configures a Session.
type Option func(*Session)

// WithSerialFactory lets Connect open a USB link on a port chosen per call.
func WithSerialFactory(f func(port string) device.Factory) Option {
	return func(s *Session) {
		s.serial = f
	}
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// New creates a session over l. Call Start before connecting.
func New(l Link, settings SettingsStore, opts ...Option) *Session {
	s := &Session{
		link:     l,
		settings: settings,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the session as the link's message handler and state
// observer.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.unregister = s.link.OnMessage(s.handle)
		s.link.OnStateChange(s.stateChanged)
	})
}

// Close releases the message handler and closes every subscriber channel.
// It does not disconnect the link.
func (s *Session) Close() {
	if s.unregister != nil {
		s.unregister()
	}

	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.closed = true
}

// Connect connects the link over kind. A non-empty port selects the serial
// device for this USB connection only; later connects without a port use
// the configured one.
func (s *Session) Connect(ctx context.Context, kind device.TransportKind, port string) error {
	if port != "" {
		if kind != device.TransportUSB {
			return fmt.Errorf("%w: port only applies to %s", device.ErrValidation, device.TransportUSB)
		}
		if s.serial == nil {
			return fmt.Errorf("%w: serial port selection not supported", device.ErrValidation)
		}
		return s.link.ConnectWith(ctx, kind, s.serial(port))
	}
	return s.link.Connect(ctx, kind)
}

// Disconnect disconnects the link.
func (s *Session) Disconnect() error {
	return s.link.Disconnect()
}

// SetViewMode stores view and, when a device is connected, sends the
// matching device mode. It reports whether the command was sent.
func (s *Session) SetViewMode(ctx context.Context, view device.ViewMode) (bool, error) {
	if _, err := device.ParseViewMode(string(view)); err != nil {
		return false, err
	}
	if err := s.settings.SetViewMode(ctx, view); err != nil {
		return false, fmt.Errorf("store view mode: %w", err)
	}

	sent := true
	if err := s.link.SendViewMode(ctx, view); err != nil {
		if !errors.Is(err, device.ErrNotConnected) {
			return false, err
		}
		sent = false
	}

	s.publish(EventMode, ModeChange{
		ViewMode:   view,
		DeviceMode: view.DeviceMode().String(),
		Sent:       sent,
	})
	return sent, nil
}

// ViewMode returns the stored view mode.
func (s *Session) ViewMode(ctx context.Context) (device.ViewMode, error) {
	return s.settings.ViewMode(ctx)
}

// Orientation returns the stored shutter orientation.
func (s *Session) Orientation(ctx context.Context) (device.Orientation, error) {
	return s.settings.Orientation(ctx)
}

// SetOrientation stores a manual orientation, or auto to re-enable
// inference from the next three-point measurement.
func (s *Session) SetOrientation(ctx context.Context, o device.Orientation) error {
	if _, err := device.ParseOrientation(string(o)); err != nil {
		return err
	}
	if err := s.settings.SetOrientation(ctx, o); err != nil {
		return fmt.Errorf("store orientation: %w", err)
	}
	s.publish(EventOrientation, OrientationChange{Orientation: o})
	return nil
}

// Latest returns the most recent measurements.
func (s *Session) Latest() Latest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.latest
	l.Metadata = maps.Clone(s.latest.Metadata)
	return l
}

// Reset clears the latest measurements.
func (s *Session) Reset() {
	s.mu.Lock()
	s.latest = Latest{}
	s.mu.Unlock()

	s.publish(EventReset, nil)
}

// Status returns the link status and current settings.
func (s *Session) Status(ctx context.Context) (Status, error) {
	st := Status{Link: s.link.Status()}

	var err error
	if st.ViewMode, err = s.settings.ViewMode(ctx); err != nil {
		return st, fmt.Errorf("load view mode: %w", err)
	}
	if st.Orientation, err = s.settings.Orientation(ctx); err != nil {
		return st, fmt.Errorf("load orientation: %w", err)
	}
	return st, nil
}

// Subscribe returns a channel receiving every event published from now on.
// Slow subscribers miss events rather than stall the device link.
func (s *Session) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes ch.
func (s *Session) Unsubscribe(ch chan Event) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *Session) publish(typ EventType, data any) {
	evt := Event{Type: typ, Timestamp: time.Now(), Data: data}

	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// handle runs on the link's read loop.
func (s *Session) handle(msg protocol.Message) {
	now := time.Now()

	switch m := msg.(type) {
	case *protocol.Metadata:
		s.mu.Lock()
		s.latest.Metadata = m.Fields
		s.latest.UpdatedAt = now
		s.mu.Unlock()
		s.publish(EventMetadata, m.Fields)

	case *protocol.SinglePoint:
		s.mu.Lock()
		s.latest.SinglePoint = m
		s.latest.UpdatedAt = now
		s.mu.Unlock()
		s.publish(EventSinglePoint, m)

	case *protocol.ThreePoint:
		s.inferOrientation(m)

		s.mu.Lock()
		s.latest.ThreePoint = m
		s.latest.UpdatedAt = now
		s.mu.Unlock()
		s.publish(EventThreePoint, m)
	}
}

func (s *Session) inferOrientation(m *protocol.ThreePoint) {
	ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
	defer cancel()

	current, err := s.settings.Orientation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load orientation setting")
		return
	}

	next, changed := orientation.Infer(current, m)
	if !changed {
		return
	}
	if err := s.settings.SetOrientation(ctx, next); err != nil {
		s.log.Warn().Err(err).Str("orientation", string(next)).Msg("Failed to store inferred orientation")
		return
	}

	s.log.Info().Str("orientation", string(next)).Msg("Inferred shutter orientation")
	s.publish(EventOrientation, OrientationChange{Orientation: next, Inferred: true})
}

func (s *Session) stateChanged(from, to device.State, kind device.TransportKind) {
	s.publish(EventState, StateChange{
		From:      from.String(),
		To:        to.String(),
		Transport: kind,
	})
}
