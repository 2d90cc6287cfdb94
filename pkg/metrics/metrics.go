// Package metrics provides the centralized Prometheus metrics reference
// for the crawler. All metrics are defined in their respective packages
// (client, cache, ratelimit, crawler) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the crawler.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - courtlistener_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - courtlistener_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - courtlistener_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Pacing Metrics (pkg/ratelimit):
//   - courtlistener_pacer_waits_total{class} (Counter): Paced waits by endpoint class
//   - courtlistener_pacer_wait_seconds{class} (Histogram): Time spent waiting for pacing
//
// Cache Metrics (pkg/cache):
//   - courtlistener_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - courtlistener_cache_misses_total (Counter): Cache misses
//   - courtlistener_cache_size_bytes{layer="redis"} (Gauge): Bytes written to cache
//   - courtlistener_cache_errors_total{operation} (Counter): Cache operation errors
//
// Traversal Metrics (pkg/crawler):
//   - crawl_records_total (Counter): CrawlRecords assembled
//   - crawl_dockets_processed_total (Counter): Dockets processed
//   - crawl_nodes_skipped_total{level} (Counter): Clusters/opinions skipped after fetch failures
//   - crawl_empty_opinions_total (Counter): Opinions dropped by the empty-text gate
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(courtlistener_cache_hits_total[5m])) /
//   (sum(rate(courtlistener_cache_hits_total[5m])) + sum(rate(courtlistener_cache_misses_total[5m])))
//
//   # Skip Rate by Level
//   rate(crawl_nodes_skipped_total[5m])
//
//   # Request Error Rate
//   rate(courtlistener_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(courtlistener_request_duration_seconds_bucket[5m]))
