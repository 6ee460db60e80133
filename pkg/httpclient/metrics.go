package httpclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graft",
		Name:      "client_requests_total",
		Help:      "Total number of requests issued by the client, by method and status code.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "graft",
		Name:      "client_request_duration_seconds",
		Help:      "Duration of client requests in seconds, including transport retries.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
	}, []string{"method"})
)
