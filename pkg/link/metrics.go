package link

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/protocol"
)

// Metrics holds Prometheus metrics for a Link. A nil *Metrics records nothing.
type Metrics struct {
	state    prometheus.Gauge       // 0 disconnected, 1 connecting, 2 connected
	connects *prometheus.CounterVec // By transport and result (ok/failed/aborted)
	lines    *prometheus.CounterVec // By line class
	messages *prometheus.CounterVec // By message type
	rejected *prometheus.CounterVec // By reason (malformed/unknown_type/invalid)
	commands *prometheus.CounterVec // By mode and result (ok/failed/not_connected)
}

// NewMetrics creates link metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "state",
			Help:      "Current connection state of the device link",
		}),

		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "connects_total",
			Help:      "Total number of connection attempts",
		}, []string{"transport", "result"}),

		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "lines_total",
			Help:      "Total number of framed lines read from the device",
		}, []string{"class"}),

		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "messages_total",
			Help:      "Total number of validated messages delivered",
		}, []string{"type"}),

		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "rejected_total",
			Help:      "Total number of candidate messages discarded",
		}, []string{"reason"}),

		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shutterlink",
			Subsystem: "link",
			Name:      "commands_total",
			Help:      "Total number of mode commands sent to the device",
		}, []string{"mode", "result"}),
	}

	for _, c := range []prometheus.Collector{m.state, m.connects, m.lines, m.messages, m.rejected, m.commands} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) setState(s device.State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func (m *Metrics) recordConnect(kind device.TransportKind, result string) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(string(kind), result).Inc()
}

func (m *Metrics) recordLine(class protocol.LineClass) {
	if m == nil {
		return
	}
	m.lines.WithLabelValues(class.String()).Inc()
}

func (m *Metrics) recordMessage(t protocol.MessageType) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) recordRejected(err error) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(rejectReason(err)).Inc()
}

func (m *Metrics) recordCommand(mode device.Mode, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(mode.String(), result).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMalformed):
		return "malformed"
	case errors.Is(err, protocol.ErrUnknownType):
		return "unknown_type"
	default:
		return "invalid"
	}
}
