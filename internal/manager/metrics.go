package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlpd",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Dispatch operations by capability and outcome kind (ok on success).",
		},
		[]string{"capability", "kind"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlpd",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Dispatch latency including any engine build and admission wait.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"capability"},
	)
)

func init() {
	prometheus.MustRegister(dispatchTotal, dispatchDuration)
}

// observe records one dispatch outcome. Use as
// defer observe(capability, time.Now(), &err).
func observe(capability string, start time.Time, errp *error) {
	kind := "ok"
	if *errp != nil {
		kind = string(KindOf(*errp))
	}
	dispatchTotal.WithLabelValues(capability, kind).Inc()
	dispatchDuration.WithLabelValues(capability).Observe(time.Since(start).Seconds())
}
