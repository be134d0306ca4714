package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gearguard_"

	ResultSuccess     = "success"
	ResultError       = "error"
	ResultNotFound    = "not_found"
	ResultUnavailable = "unavailable"
	ResultRejected    = "rejected"
)

var (
	registerOnce sync.Once

	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	transitions    *prometheus.CounterVec
	requestsOpened *prometheus.CounterVec
	scrapFailures  prometheus.Counter
)

// Init регистрирует коллекторы в registerer (prometheus.DefaultRegisterer, если nil).
// Повторные вызовы ничего не делают.
func Init(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}

		storeOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_operations_total",
				Help: "Document store operations by op, collection and result",
			},
			[]string{"op", "collection", "result"},
		)
		storeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "store_operation_seconds",
				Help:    "Document store operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "collection"},
		)
		transitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "request_transitions_total",
				Help: "Maintenance request status transitions by from, to and result",
			},
			[]string{"from", "to", "result"},
		)
		requestsOpened = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "requests_created_total",
				Help: "Maintenance requests created by type and result",
			},
			[]string{"type", "result"},
		)
		scrapFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "scrap_equipment_write_failures_total",
				Help: "Scrap transitions where the request was written but the equipment write failed",
			},
		)

		registerer.MustRegister(storeOps, storeLatency, transitions, requestsOpened, scrapFailures)
	})
}

func ObserveStoreOp(op, collection, result string, elapsed time.Duration) {
	if storeOps == nil {
		return
	}
	storeOps.WithLabelValues(op, collection, result).Inc()
	storeLatency.WithLabelValues(op, collection).Observe(elapsed.Seconds())
}

func ObserveTransition(from, to, result string) {
	if transitions == nil {
		return
	}
	transitions.WithLabelValues(from, to, result).Inc()
}

func ObserveRequestCreated(requestType, result string) {
	if requestsOpened == nil {
		return
	}
	requestsOpened.WithLabelValues(requestType, result).Inc()
}

func IncScrapFailure() {
	if scrapFailures == nil {
		return
	}
	scrapFailures.Inc()
}
