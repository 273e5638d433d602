package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
)

const (
	// DefaultCompletionBaseURL is the completion vendor endpoint prefix.
	DefaultCompletionBaseURL = "https://api.openai.com"

	// DefaultHostBaseURL is the host API endpoint prefix.
	DefaultHostBaseURL = "https://public.missiveapp.com"

	// CompletionPath is the route for the completion proxy endpoint.
	CompletionPath = "/api/completion"

	// HostPathPrefix is the route prefix for the host API proxy.
	HostPathPrefix = "/api/host"

	// maxContentChars caps the combined message content length a completion
	// request may carry.
	maxContentChars = 50000

	// maxTokensCeiling caps the requested output length regardless of what
	// the caller asks for.
	maxTokensCeiling = 2000

	// maxTemperature caps the sampling temperature.
	maxTemperature = 1.0

	defaultMaxTokens   = 1500
	defaultTemperature = 0.3
	defaultModel       = "gpt-4o-mini"

	proxyTimeout = 90 * time.Second
)

// hostAllowedPrefixes lists the host API sub-paths the proxy will forward.
// Everything else is rejected with 403.
var hostAllowedPrefixes = []string{
	"/v1/tasks",
	"/v1/comments",
	"/v1/users",
	"/v1/conversations",
}

// Proxy forwards widget requests to the completion vendor and the host API,
// injecting the server-held bearer credentials so secrets never reach the
// client.
type Proxy struct {
	serverContext     *ServerContext
	completionBaseURL string
	hostBaseURL       string
	httpClient        *http.Client
	logger            *slog.Logger
	metrics           *instrumentation.Metrics
}

// ProxyConfig configures a Proxy.
type ProxyConfig struct {
	// ServerContext supplies the upstream credentials.
	ServerContext *ServerContext

	// CompletionBaseURL overrides the completion vendor endpoint.
	CompletionBaseURL string

	// HostBaseURL overrides the host API endpoint.
	HostBaseURL string

	// HTTPClient overrides the outbound HTTP client.
	HTTPClient *http.Client

	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// Metrics records proxy request metrics. Optional.
	Metrics *instrumentation.Metrics
}

// NewProxy creates a Proxy.
func NewProxy(config ProxyConfig) (*Proxy, error) {
	if config.ServerContext == nil {
		return nil, fmt.Errorf("server context is required")
	}

	p := &Proxy{
		serverContext:     config.ServerContext,
		completionBaseURL: config.CompletionBaseURL,
		hostBaseURL:       config.HostBaseURL,
		httpClient:        config.HTTPClient,
		logger:            config.Logger,
		metrics:           config.Metrics,
	}
	if p.completionBaseURL == "" {
		p.completionBaseURL = DefaultCompletionBaseURL
	}
	if p.hostBaseURL == "" {
		p.hostBaseURL = DefaultHostBaseURL
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: proxyTimeout}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = &instrumentation.Metrics{}
	}
	p.logger = logging.WithComponent(p.logger, "proxy")

	return p, nil
}

// Register registers the proxy endpoints on the given mux.
func (p *Proxy) Register(mux *http.ServeMux) {
	mux.Handle(CompletionPath, p.CompletionHandler())
	mux.Handle(HostPathPrefix+"/", p.HostHandler())
}

// writeCORS sets permissive CORS headers so the widget iframe can call the
// proxy from the host origin.
func writeCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", methods)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBody is the generic failure response shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// completionRequest is the caller-supplied completion payload. Only the
// fields the proxy sanitizes are modeled; everything else is dropped.
type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionHandler returns the handler for the completion proxy endpoint.
// It accepts the vendor's request shape, caps content size, output length
// and temperature, injects the server-held API key and forwards the vendor's
// status code and body.
func (p *Proxy) CompletionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w, "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		statusCode := p.handleCompletion(w, r)
		p.metrics.RecordProxyRequest(r.Context(), r.Method, "completion", statusCode, time.Since(start))
	})
}

func (p *Proxy) handleCompletion(w http.ResponseWriter, r *http.Request) int {
	log := p.logger.With(logging.Operation("completionProxy"))

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return http.StatusMethodNotAllowed
	}

	apiKey := p.serverContext.CompletionKey()
	if apiKey == "" {
		log.Error("completion API key not configured")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Completion API key not configured on server"})
		return http.StatusInternalServerError
	}

	var request completionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Messages == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request format"})
		return http.StatusBadRequest
	}

	totalContent := 0
	for _, msg := range request.Messages {
		totalContent += len(msg.Content)
	}
	if totalContent > maxContentChars {
		log.Warn("completion request too large", slog.Int("content_chars", totalContent))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request content too large"})
		return http.StatusBadRequest
	}

	sanitized := completionRequest{
		Model:       request.Model,
		Messages:    request.Messages,
		MaxTokens:   min(orDefault(request.MaxTokens, defaultMaxTokens), maxTokensCeiling),
		Temperature: minFloat(orDefaultFloat(request.Temperature, defaultTemperature), maxTemperature),
	}
	if sanitized.Model == "" {
		sanitized.Model = defaultModel
	}

	body, err := json.Marshal(sanitized)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.completionBaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error("completion vendor unreachable", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details := vendorErrorMessage(data)
		log.Error("completion vendor rejected request",
			slog.Int("status_code", resp.StatusCode),
			logging.Status(logging.StatusError))
		writeJSON(w, resp.StatusCode, errorBody{
			Error:   fmt.Sprintf("Completion API error: %d", resp.StatusCode),
			Details: details,
		})
		return resp.StatusCode
	}

	log.Debug("completion request proxied",
		slog.Int("content_chars", totalContent),
		logging.Status(logging.StatusSuccess))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return http.StatusOK
}

// HostHandler returns the handler for the host API proxy endpoint. It
// forwards method, sub-path and body to the host API after checking the
// sub-path against the allow-list and injecting the server-held token.
func (p *Proxy) HostHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w, "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		statusCode := p.handleHost(w, r)
		p.metrics.RecordProxyRequest(r.Context(), r.Method, "host", statusCode, time.Since(start))
	})
}

func (p *Proxy) handleHost(w http.ResponseWriter, r *http.Request) int {
	log := p.logger.With(logging.Operation("hostProxy"))

	token := p.serverContext.HostToken()
	if token == "" {
		log.Error("host API token not configured")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Host API token not configured on server"})
		return http.StatusInternalServerError
	}

	apiPath := strings.TrimPrefix(r.URL.Path, HostPathPrefix)
	if !hostPathAllowed(apiPath) {
		log.Warn("host path rejected", slog.String("path", apiPath))
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Endpoint not allowed"})
		return http.StatusForbidden
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Body != nil {
		body = r.Body
	}

	target := p.hostBaseURL + apiPath
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error("host API unreachable", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return http.StatusInternalServerError
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("host API rejected request",
			slog.Int("status_code", resp.StatusCode),
			slog.String("path", apiPath),
			logging.Status(logging.StatusError))
		writeJSON(w, resp.StatusCode, errorBody{
			Error:   fmt.Sprintf("Host API error: %d", resp.StatusCode),
			Details: string(data),
		})
		return resp.StatusCode
	}

	log.Debug("host request proxied",
		slog.String("path", apiPath),
		logging.Status(logging.StatusSuccess))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return http.StatusOK
}

func hostPathAllowed(apiPath string) bool {
	for _, prefix := range hostAllowedPrefixes {
		if strings.HasPrefix(apiPath, prefix) {
			return true
		}
	}
	return false
}

// vendorErrorMessage extracts the message from a vendor {"error":{"message"}}
// body, falling back to a fixed string.
func vendorErrorMessage(data []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return "Unknown error"
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
