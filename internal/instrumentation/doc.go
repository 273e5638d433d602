// Package instrumentation provides OpenTelemetry instrumentation for the
// threadlens proxy and summarization pipeline.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for proxy requests and upstream vendor API calls
//   - Distributed tracing for proxy request flows and vendor calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Proxy Metrics:
//   - proxy_requests_total: Counter of proxy requests by method, endpoint, and status
//   - proxy_request_duration_seconds: Histogram of proxy request durations
//   - active_selections: Gauge of conversation selections being processed
//
// Vendor API Metrics:
//   - vendor_api_operations_total: Counter of upstream operations by vendor, operation, status
//   - vendor_api_operation_duration_seconds: Histogram of upstream operation durations
//
// Summarization Metrics:
//   - summaries_total: Counter of produced summaries by detected tone
//   - summary_sections: Histogram of parsed sections per summary
//
// Mutation Metrics:
//   - tasks_created_total: Counter of host task creations by status
//   - comments_posted_total: Counter of host comment posts by status
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - Proxy request handling (proxy.<endpoint>)
//   - Upstream vendor calls (<vendor>.<operation>)
//
// # Configuration
//
// Configuration is environment-driven via DefaultConfig; see Config for the
// full list of variables. Instrumentation as a whole can be disabled with
// INSTRUMENTATION_ENABLED=false, in which case all recorders become no-ops.
package instrumentation
