// Package metrics holds the prometheus collectors shared by the catalogs,
// the repository and the bookmark store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "show_manager"

var (
	// RemoteRequestsTotal counts catalog calls by catalog, operation and status.
	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of catalog requests.",
		},
		[]string{"catalog", "operation", "status"},
	)

	// RemoteRequestDuration observes catalog latency, cache hits excluded.
	RemoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Catalog request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"catalog", "operation"},
	)

	// BookmarkChangesTotal counts insert/delete attempts by result.
	BookmarkChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmark_changes_total",
			Help:      "Total number of bookmark insert and delete attempts.",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		RemoteRequestsTotal,
		RemoteRequestDuration,
		BookmarkChangesTotal,
	)
}
