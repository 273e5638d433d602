package instrumentation

import (
	"context"
	"testing"
	"time"
)

func testProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordProxyRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := testProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordProxyRequest(ctx, "POST", "completion", 200, 100*time.Millisecond)
	metrics.RecordProxyRequest(ctx, "POST", "host", 403, 5*time.Millisecond)
}

func TestMetrics_RecordVendorOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := testProvider(t, ctx).Metrics()

	metrics.RecordVendorOperation(ctx, VendorCompletion, "summarize", StatusSuccess, 2*time.Second)
	metrics.RecordVendorOperation(ctx, VendorHost, OperationCreateTask, StatusError, 100*time.Millisecond)
}

func TestMetrics_RecordSummary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := testProvider(t, ctx).Metrics()

	metrics.RecordSummary(ctx, "Neutral", 4)
	metrics.RecordSummary(ctx, "Angry", 1)
}

func TestMetrics_ActiveSelections(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := testProvider(t, ctx).Metrics()

	metrics.IncrementActiveSelections(ctx)
	metrics.DecrementActiveSelections(ctx)
}

func TestMetrics_NoopWhenUninitialized(t *testing.T) {
	ctx := context.Background()
	metrics := &Metrics{}

	// All recorders must be safe to call when instrumentation is disabled.
	metrics.RecordProxyRequest(ctx, "POST", "completion", 200, time.Millisecond)
	metrics.RecordVendorOperation(ctx, VendorHost, OperationFetchUsers, StatusSuccess, time.Millisecond)
	metrics.RecordSummary(ctx, "Happy", 3)
	metrics.RecordTaskCreated(ctx, StatusSuccess)
	metrics.RecordCommentPosted(ctx, StatusError)
	metrics.RecordTaskCreatedForUser(ctx, StatusSuccess, "jane@example.com")
	metrics.IncrementActiveSelections(ctx)
	metrics.DecrementActiveSelections(ctx)
}

func TestProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected no-op metrics recorder, got nil")
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
