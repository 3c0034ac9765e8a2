package session

import "github.com/prometheus/client_golang/prometheus"

var (
	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "consoled",
			Subsystem: "session",
			Name:      "activations_total",
			Help:      "Total model activation requests that began warming",
		},
		[]string{"model"},
	)

	loadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "consoled",
			Subsystem: "session",
			Name:      "load_failures_total",
			Help:      "Total model loads that failed and fell back to idle",
		},
	)

	timeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "consoled",
			Subsystem: "session",
			Name:      "timeouts_total",
			Help:      "Auto-deactivations by timer",
		},
		[]string{"kind"},
	)

	stateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "consoled",
			Subsystem: "session",
			Name:      "state",
			Help:      "Current lifecycle state, 1 for the active state",
		},
		[]string{"state"},
	)

	loadDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "consoled",
			Subsystem: "session",
			Name:      "load_duration_seconds",
			Help:      "Wall time from activation request to running",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(activationsTotal, loadFailuresTotal, timeoutsTotal, stateGauge, loadDurationSeconds)
}

// observeState flips the state gauge so exactly one label carries a 1.
func observeState(s Status) {
	for _, st := range []Status{StatusIdle, StatusWarming, StatusRunning, StatusCooling} {
		v := 0.0
		if st == s {
			v = 1
		}
		stateGauge.WithLabelValues(string(st)).Set(v)
	}
}
