package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type serverMetrics struct {
	events   *prometheus.CounterVec
	contacts *prometheus.CounterVec
	requests *prometheus.CounterVec
	clients  prometheus.GaugeFunc
}

func newMetrics(registerer prometheus.Registerer, clients func() float64) (*serverMetrics, error) {
	m := &serverMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeward",
			Name:      "events_ingested_total",
			Help:      "Live feed events accepted, by event type.",
		}, []string{"type"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeward",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions, by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodeward",
			Name:      "api_requests_total",
			Help:      "API requests, by route and method.",
		}, []string{"route", "method"}),
		clients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "nodeward",
			Name:      "live_clients",
			Help:      "Connected live feed websocket clients.",
		}, clients),
	}

	for _, c := range []prometheus.Collector{m.events, m.contacts, m.requests, m.clients} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// eventLabel keeps the type label bounded to the known classes.
func eventLabel(eventType string) string {
	switch eventType {
	case "attack", "metric", "log", "status", "alert":
		return eventType
	}
	return "other"
}
