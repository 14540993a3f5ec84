package circle

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	commands        *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	inconsistencies *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todosponen",
			Name:      "commands_total",
			Help:      "Circle commands by outcome (ok, rejected, error).",
		}, []string{"command", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todosponen",
			Name:      "rejections_total",
			Help:      "Rejected circle commands by reason.",
		}, []string{"command", "reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todosponen",
			Name:      "notifications_total",
			Help:      "Notification deliveries by kind and result.",
		}, []string{"kind", "result"}),
		inconsistencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todosponen",
			Name:      "ledger_inconsistencies_total",
			Help:      "Stored slot data that violated the ledger invariants.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.rejections, m.notifications, m.inconsistencies)
	}
	return m
}
