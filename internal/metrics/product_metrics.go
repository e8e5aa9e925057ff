package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// StoreErrors counts failed store calls by operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_store_errors_total",
		Help: "The total number of failed product store operations",
	}, []string{"operation"})

	// NotificationFailures counts product notifications that could not be published.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_notification_failures_total",
		Help: "The total number of product notifications that failed to publish",
	})

	// HTTPRequestDuration observes HTTP request latency by route, method and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
