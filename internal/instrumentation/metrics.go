package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrEndpoint  = "endpoint"
	attrStatus    = "status"
	attrOperation = "operation"
	attrVendor    = "vendor"
	attrTone      = "tone"
	attrUser      = "user_domain"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Proxy metrics
	proxyRequestsTotal   metric.Int64Counter
	proxyRequestDuration metric.Float64Histogram

	// Upstream vendor API metrics (completion provider, host API)
	vendorOperationsTotal   metric.Int64Counter
	vendorOperationDuration metric.Float64Histogram

	// Summarization pipeline metrics
	summariesTotal  metric.Int64Counter
	summarySections metric.Int64Histogram

	// Mutation metrics
	tasksCreatedTotal   metric.Int64Counter
	commentsPostedTotal metric.Int64Counter

	// Selection tracking
	activeSelections metric.Int64UpDownCounter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.proxyRequestsTotal, err = meter.Int64Counter(
		"proxy_requests_total",
		metric.WithDescription("Total number of proxy requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy_requests_total counter: %w", err)
	}

	m.proxyRequestDuration, err = meter.Float64Histogram(
		"proxy_request_duration_seconds",
		metric.WithDescription("Proxy request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy_request_duration_seconds histogram: %w", err)
	}

	m.vendorOperationsTotal, err = meter.Int64Counter(
		"vendor_api_operations_total",
		metric.WithDescription("Total number of upstream vendor API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor_api_operations_total counter: %w", err)
	}

	m.vendorOperationDuration, err = meter.Float64Histogram(
		"vendor_api_operation_duration_seconds",
		metric.WithDescription("Upstream vendor API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor_api_operation_duration_seconds histogram: %w", err)
	}

	m.summariesTotal, err = meter.Int64Counter(
		"summaries_total",
		metric.WithDescription("Total number of conversation summaries produced"),
		metric.WithUnit("{summary}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create summaries_total counter: %w", err)
	}

	m.summarySections, err = meter.Int64Histogram(
		"summary_sections",
		metric.WithDescription("Number of sections parsed out of one summary"),
		metric.WithUnit("{section}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 21),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary_sections histogram: %w", err)
	}

	m.tasksCreatedTotal, err = meter.Int64Counter(
		"tasks_created_total",
		metric.WithDescription("Total number of host tasks created"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_created_total counter: %w", err)
	}

	m.commentsPostedTotal, err = meter.Int64Counter(
		"comments_posted_total",
		metric.WithDescription("Total number of host comments posted"),
		metric.WithUnit("{comment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments_posted_total counter: %w", err)
	}

	m.activeSelections, err = meter.Int64UpDownCounter(
		"active_selections",
		metric.WithDescription("Number of conversation selections currently being processed"),
		metric.WithUnit("{selection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_selections gauge: %w", err)
	}

	return m, nil
}

// RecordProxyRequest records a proxy request with method, endpoint, status code, and duration.
func (m *Metrics) RecordProxyRequest(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration) {
	if m.proxyRequestsTotal == nil || m.proxyRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrEndpoint, endpoint),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.proxyRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.proxyRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordVendorOperation records one upstream API operation.
//
// Parameters:
//   - vendor: upstream name ("completion" or "host")
//   - operation: operation type (fetch_conversations, create_task, ...)
//   - status: result status ("success" or "error")
//   - duration: time taken for the operation
func (m *Metrics) RecordVendorOperation(ctx context.Context, vendor, operation, status string, duration time.Duration) {
	if m.vendorOperationsTotal == nil || m.vendorOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrVendor, vendor),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.vendorOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.vendorOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSummary records one produced summary with its detected tone and the
// number of parsed sections.
func (m *Metrics) RecordSummary(ctx context.Context, tone string, sections int) {
	if m.summariesTotal == nil || m.summarySections == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTone, tone),
	}

	m.summariesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.summarySections.Record(ctx, int64(sections), metric.WithAttributes(attrs...))
}

// RecordTaskCreated records a host task creation attempt.
// Status should be one of: "success", "error".
func (m *Metrics) RecordTaskCreated(ctx context.Context, status string) {
	if m.tasksCreatedTotal == nil {
		return // Instrumentation not initialized
	}

	m.tasksCreatedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordCommentPosted records a host comment posting attempt.
// Status should be one of: "success", "error".
func (m *Metrics) RecordCommentPosted(ctx context.Context, status string) {
	if m.commentsPostedTotal == nil {
		return // Instrumentation not initialized
	}

	m.commentsPostedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordTaskCreatedForUser records a task creation with user attribution.
// The user domain label is only added when detailedLabels is enabled.
func (m *Metrics) RecordTaskCreatedForUser(ctx context.Context, status, userEmail string) {
	if m.tasksCreatedTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && userEmail != "" {
		attrs = append(attrs, attribute.String(attrUser, ExtractUserDomain(userEmail)))
	}

	m.tasksCreatedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementActiveSelections increments the active selections counter.
func (m *Metrics) IncrementActiveSelections(ctx context.Context) {
	if m.activeSelections == nil {
		return // Instrumentation not initialized
	}

	m.activeSelections.Add(ctx, 1)
}

// DecrementActiveSelections decrements the active selections counter.
func (m *Metrics) DecrementActiveSelections(ctx context.Context) {
	if m.activeSelections == nil {
		return // Instrumentation not initialized
	}

	m.activeSelections.Add(ctx, -1)
}
