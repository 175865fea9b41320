package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the warehouse service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LotsCreated  prometheus.Counter
	BinsAffected prometheus.Counter
	Deliveries   prometheus.Counter
	BinsDepleted prometheus.Counter
}

// NewMetrics registers the warehouse collectors on the given registerer.
// Pass prometheus.DefaultRegisterer for the /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "warehouse_lots_created_total",
			Help: "Lots accepted by the allocation engine.",
		}),
		BinsAffected: factory.NewCounter(prometheus.CounterOpts{
			Name: "warehouse_bins_affected_total",
			Help: "Bins written to (opened or merged into) during allocation.",
		}),
		Deliveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "warehouse_deliveries_total",
			Help: "Delivery events applied to bins.",
		}),
		BinsDepleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "warehouse_bins_depleted_total",
			Help: "Bins that reached zero quantity and turned DONE.",
		}),
	}
}
