package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiptly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiptly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ReceiptsIssued counts committed receipts by receipt kind.
	ReceiptsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiptly_receipts_issued_total",
			Help: "Receipts committed by the issuance transaction",
		},
		[]string{"kind"},
	)

	// IssuanceRetries counts issuance attempts retried after a write conflict.
	IssuanceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receiptly_issuance_retries_total",
		Help: "Issuance transactions retried after a conflict",
	})

	// IssuanceFailures counts issuance attempts that returned an error, by error kind.
	IssuanceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiptly_issuance_failures_total",
			Help: "Issuance transactions that failed",
		},
		[]string{"kind"},
	)

	// AuditWriteFailures counts audit entries dropped because the insert failed.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receiptly_audit_write_failures_total",
		Help: "Audit log entries that could not be written",
	})
)
