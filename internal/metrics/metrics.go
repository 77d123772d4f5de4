package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels API calls that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels API calls that failed (including rate limits).
	OutcomeError = "error"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hc_bulk",
			Name:      "api_requests_total",
			Help:      "Total management API requests, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	rateLimitRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hc_bulk",
			Name:      "rate_limit_retries_total",
			Help:      "Number of backoff sleeps taken after rate-limit responses.",
		},
	)

	checksMutatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hc_bulk",
			Name:      "checks_mutated_total",
			Help:      "Checks successfully mutated, partitioned by action (update or pause).",
		},
		[]string{"action"},
	)
)

// Register attaches hc-bulk collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		apiRequestsTotal,
		rateLimitRetriesTotal,
		checksMutatedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records one API request with its outcome label.
func ObserveRequest(operation, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	apiRequestsTotal.WithLabelValues(operation, label).Inc()
}

// ObserveRateLimitRetry records a single backoff sleep.
func ObserveRateLimitRetry() {
	rateLimitRetriesTotal.Inc()
}

// ObserveMutation records a successfully applied action ("update" or "pause").
func ObserveMutation(action string) {
	checksMutatedTotal.WithLabelValues(action).Inc()
}
