// Package metrics exports bookdash Prometheus metrics.
//
// Registry satisfies books.Observer and counts every client operation under
// bookdash_api_requests_total{operation,outcome}, with latency in
// bookdash_api_request_duration_seconds{operation}. Go runtime and process
// collectors are registered under the same prefix.
//
// Server exposes the registry on a chi router:
//
//	GET /metrics  Prometheus text format, Cache-Control: no-store
//	GET /health   {"status":"ok"}
package metrics
