package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/thread"
)

func testMessages() []thread.Message {
	return []thread.Message{
		{Sender: "Alice Ray", Date: "Jun 27, 2025, 2:30 PM", Subject: "Q3 plan", Body: "Draft attached."},
		{Sender: "Bob Chen", Date: "Jun 27, 2025, 3:05 PM", Subject: "Q3 plan", Body: "Looks good, shipping Friday."},
	}
}

func TestSerializeThread(t *testing.T) {
	text := SerializeThread(testMessages())

	assert.Contains(t, text, "From: Alice Ray\nDate: Jun 27, 2025, 2:30 PM\n\nDraft attached.\n\n---\n")
	assert.Contains(t, text, "From: Bob Chen")
	// Input order is preserved.
	assert.Less(t, strings.Index(text, "Alice Ray"), strings.Index(text, "Bob Chen"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testMessages())

	assert.True(t, strings.HasPrefix(prompt, "Act as a professional business communication analyst."))
	assert.Contains(t, prompt, `Start your response with: "TONE: [category] | CONFIDENCE: [score]"`)
	assert.Contains(t, prompt, "From: Alice Ray")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"TONE: Happy | CONFIDENCE: 90\nAll good."}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	summary, err := client.Summarize(context.Background(), testMessages())
	require.NoError(t, err)
	assert.Equal(t, "TONE: Happy | CONFIDENCE: 90\nAll good.", summary)

	assert.Equal(t, DefaultModel, captured.Model)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	assert.InDelta(t, defaultTemperature, captured.Temperature, 0.0001)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "From: Alice Ray")
}

func TestSummarizeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	summary, err := client.Summarize(context.Background(), testMessages())
	require.NoError(t, err)
	assert.Equal(t, FallbackSummary, summary)
}

func TestSummarizeProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	client, err := NewClient("sk-bad", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), testMessages())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestSummarizeProviderErrorNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient("sk-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), testMessages())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "Unknown error")
}

func TestSummarizeRecordsVendorOperation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "TONE: Neutral | CONFIDENCE: 60\nFine."}},
			},
		})
	}))
	defer srv.Close()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)

	client, err := NewClient("key", WithBaseURL(srv.URL), WithMetrics(metrics))
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), testMessages())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var sum int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "vendor_api_operations_total" {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range data.DataPoints {
				sum += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), sum)
}
