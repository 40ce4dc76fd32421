package infrastructure

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
)

const outcomeAccepted = "accepted"

// FlightCounter informa quantos voos estão cadastrados.
type FlightCounter interface {
	Count() int
}

// Metrics expõe os coletores do registro: resultado dos comandos, eventos observados e voos ativos.
type Metrics struct {
	commands *prometheus.CounterVec
	events   *prometheus.CounterVec
	http     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, flights FlightCounter) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "airline",
				Subsystem: "registry",
				Name:      "commands_total",
				Help:      "Total number of registry commands by outcome.",
			},
			[]string{"command", "outcome"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "airline",
				Subsystem: "registry",
				Name:      "events_total",
				Help:      "Total number of registry notifications observed.",
			},
			[]string{"event"},
		),
		http: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "airline",
				Subsystem: "ops",
				Name:      "requests_total",
				Help:      "Total number of ops HTTP requests handled.",
			},
			[]string{"path", "status"},
		),
	}

	flightsGauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "airline",
			Subsystem: "registry",
			Name:      "flights",
			Help:      "Current number of flights in the registry.",
		},
		func() float64 { return float64(flights.Count()) },
	)

	for _, collector := range []prometheus.Collector{m.commands, m.events, m.http, flightsGauge} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveCommand implementa application.Recorder. O outcome é "accepted" ou o Kind do erro.
func (m *Metrics) ObserveCommand(command string, err error) {
	outcome := outcomeAccepted
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) observeRequest(path, status string) {
	m.http.WithLabelValues(path, status).Inc()
}

// EventHandler conta as notificações entregues pelo barramento de eventos.
func (m *Metrics) EventHandler() application.NotificationEventHandler {
	return &eventCounter{events: m.events}
}

type eventCounter struct {
	events *prometheus.CounterVec
}

func (h *eventCounter) Handle(_ context.Context, event application.NotificationEvent) error {
	h.events.WithLabelValues(event.EventName()).Inc()
	return nil
}
