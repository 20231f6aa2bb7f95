package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlpd",
			Subsystem: "registry",
			Name:      "builds_total",
			Help:      "Engine builds by outcome",
		},
		[]string{"registry", "result"},
	)

	buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlpd",
			Subsystem: "registry",
			Name:      "build_duration_seconds",
			Help:      "Duration of engine builds in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"registry"},
	)

	entriesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nlpd",
			Subsystem: "registry",
			Name:      "entries",
			Help:      "Built engine instances",
		},
		[]string{"registry"},
	)

	admissionWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlpd",
			Subsystem: "registry",
			Name:      "admission_wait_seconds",
			Help:      "Time callers waited for exclusive access to an engine",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"registry"},
	)

	busyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlpd",
			Subsystem: "registry",
			Name:      "busy_total",
			Help:      "Calls rejected because an engine queue was full or the wait expired",
		},
		[]string{"registry"},
	)
)

func init() {
	prometheus.MustRegister(buildsTotal, buildDuration, entriesGauge, admissionWait, busyTotal)
}
