package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every ccmlink metric; the agent's HTTP server exposes it
// on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// CommandTotal counts AT command invocations by command name and outcome.
	// outcome: success / mismatch / timeout
	CommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccmlink_at_command_total",
			Help: "Total number of AT commands sent to the CCM module.",
		},
		[]string{"command", "outcome"},
	)

	// CommandLatency tracks per-command round-trip time. The module answers
	// most commands in milliseconds but cloud operations can take minutes,
	// hence the wide buckets.
	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ccmlink_at_command_latency_seconds",
			Help:    "Round-trip latency of AT commands.",
			Buckets: []float64{.005, .05, .5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"command"},
	)

	// EventTotal counts classified module events.
	EventTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccmlink_module_event_total",
			Help: "Total number of module events by classification.",
		},
		[]string{"classification"},
	)

	// CloudConnectivityStatus reports the last observed cloud connection
	// state (1=connected, 0=not connected).
	CloudConnectivityStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccmlink_cloud_connectivity_status",
			Help: "Last observed cloud connection state of the CCM module (1=connected).",
		},
	)
)

func init() {
	Registry.MustRegister(CommandTotal)
	Registry.MustRegister(CommandLatency)
	Registry.MustRegister(EventTotal)
	Registry.MustRegister(CloudConnectivityStatus)
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
