package resilience

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Command events counted by Metrics.
const (
	EventSuccess         = "success"
	EventFailure         = "failure"
	EventTimeout         = "timeout"
	EventShortCircuited  = "short_circuited"
	EventRejected        = "rejected"
	EventCancelled       = "cancelled"
	EventPanic           = "panic"
	EventFaultInjected   = "fault_injected"
	EventFallbackSuccess = "fallback_success"
	EventFallbackFailure = "fallback_failure"
)

// Metrics exposes command outcomes to Prometheus.
type Metrics struct {
	events      *prometheus.CounterVec
	circuitOpen *prometheus.GaugeVec
}

// NewMetrics creates the resilience collectors and registers them with reg.
// Collectors already registered under the same names are reused, so every
// command of a process can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_command_events_total",
		Help: "Resilience command outcomes by command and event.",
	}, []string{"command", "event"})

	circuitOpen := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resilience_circuit_open",
		Help: "1 while the command's circuit breaker is open.",
	}, []string{"command"})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if circuitOpen, err = register(reg, circuitOpen); err != nil {
		return nil, err
	}

	return &Metrics{events: events, circuitOpen: circuitOpen}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) event(command, event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(command, event).Inc()
}

func (m *Metrics) setOpen(command string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.circuitOpen.WithLabelValues(command).Set(v)
}
