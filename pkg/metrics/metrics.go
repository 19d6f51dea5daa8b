// Package metrics defines the Prometheus metrics exposed by the pipeline.
// All metrics register themselves on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts successfully fetched and persisted pages per project.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jiraminer_pages_fetched_total",
			Help: "Total number of pages fetched and persisted",
		},
		[]string{"project"},
	)

	// IssuesFetched counts records fetched per project.
	IssuesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jiraminer_issues_fetched_total",
			Help: "Total number of issues fetched",
		},
		[]string{"project"},
	)

	// RequestRetries counts retry attempts after transient transport failures.
	RequestRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jiraminer_request_retries_total",
			Help: "Total number of page request retries",
		},
	)

	// RateLimitHits counts 429 responses answered with a cooldown.
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jiraminer_rate_limit_hits_total",
			Help: "Total number of rate-limit responses from the server",
		},
	)

	// FetchErrors counts fatal scrape errors by category.
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jiraminer_fetch_errors_total",
			Help: "Total number of fatal fetch errors by error type",
		},
		[]string{"type"},
	)
)
