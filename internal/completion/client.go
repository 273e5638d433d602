package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
	"github.com/threadlens/threadlens/internal/thread"
)

const (
	// DefaultBaseURL is the chat-completion endpoint prefix.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is the model every summarization request uses.
	DefaultModel = "gpt-4o-mini"

	defaultMaxTokens   = 1500
	defaultTemperature = 0.3
	defaultTimeout     = 60 * time.Second

	// FallbackSummary is returned when the provider answers with an empty
	// choice list instead of a completion.
	FallbackSummary = "No summary generated"
)

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the completion endpoint prefix.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for vendor operation metrics.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a completion client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("completion: API key is required")
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = &instrumentation.Metrics{}
	}
	return c, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Error describes a failed completion call. It carries the HTTP status the
// provider answered with and, when present, the provider's own error message.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion: status %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("completion: %v", e.Err)
	}
	return fmt.Sprintf("completion: status %d: unknown error", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Summarize serializes the messages into the analyst prompt, performs one
// chat-completion call and returns the first choice's text verbatim. An empty
// choice list yields FallbackSummary instead of an error.
func (c *Client) Summarize(ctx context.Context, messages []thread.Message) (string, error) {
	ctx, span := instrumentation.StartVendorSpan(ctx,
		instrumentation.VendorCompletion, instrumentation.OperationSummarize)
	defer span.End()

	start := time.Now()
	text, err := c.summarize(ctx, messages)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordVendorOperation(ctx,
		instrumentation.VendorCompletion, instrumentation.OperationSummarize,
		status, time.Since(start))

	return text, err
}

func (c *Client) summarize(ctx context.Context, messages []thread.Message) (string, error) {
	log := logging.WithOperation(c.logger, "summarize")
	start := time.Now()

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: BuildPrompt(messages)},
		},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("completion request failed", logging.Err(err))
		return "", &Error{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var pe providerError
		if json.Unmarshal(data, &pe) == nil && pe.Error.Message != "" {
			apiErr.Message = pe.Error.Message
		} else {
			apiErr.Message = "Unknown error"
		}
		log.Error("completion call rejected",
			slog.Int("status_code", resp.StatusCode),
			logging.Status(logging.StatusError))
		return "", apiErr
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	log.Debug("completion call finished",
		slog.Duration(logging.KeyDuration, time.Since(start)),
		slog.Int("message_count", len(messages)),
		logging.Status(logging.StatusSuccess))

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return FallbackSummary, nil
	}
	return chat.Choices[0].Message.Content, nil
}
