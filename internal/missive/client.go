package missive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
)

const (
	// DefaultBaseURL is the public Missive REST API endpoint.
	DefaultBaseURL = "https://public.missiveapp.com"

	// defaultTimeout bounds a single API round trip.
	defaultTimeout = 30 * time.Second

	// taskTitleLimit is the maximum title length before truncation.
	taskTitleLimit = 50
)

// Client provides access to the Missive REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Useful for tests and proxied deployments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used by the client.
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

// NewClient creates a new Missive API client authenticating with the given
// bearer token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("missive API token cannot be empty")
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = &instrumentation.Metrics{}
	}

	c.logger = logging.WithComponent(c.logger, "missive")
	return c, nil
}

// FetchConversations retrieves full conversation objects for the given IDs.
// Conversations that cannot be found are reported as errors rather than skipped.
func (c *Client) FetchConversations(ctx context.Context, ids []string) ([]Conversation, error) {
	conversations := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		var resp struct {
			Conversations []Conversation `json:"conversations"`
		}
		path := "/v1/conversations/" + url.PathEscape(id)
		if err := c.doJSON(ctx, "fetchConversations", http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Conversations) == 0 {
			return nil, &Error{Op: "fetchConversations", Err: fmt.Errorf("conversation %s not found", id)}
		}
		conversations = append(conversations, resp.Conversations[0])
	}
	return conversations, nil
}

// FetchUsers retrieves all users of the organization.
func (c *Client) FetchUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.doJSON(ctx, "fetchUsers", http.MethodGet, "/v1/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CurrentUser returns the user marked as "me" in the directory listing.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	users, err := c.FetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Me {
			return &users[i], nil
		}
	}
	return nil, &Error{Op: "fetchUsers", Err: fmt.Errorf("no user marked as current user")}
}

// CreateTask creates a task, optionally attached to a conversation as a subtask.
// Titles longer than 50 characters are truncated with an ellipsis; the full text
// is preserved in the description.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	title := input.Title
	if title == "" {
		title = input.Description
	}
	if len(title) > taskTitleLimit {
		cut := taskTitleLimit
		// Back off to a rune boundary so the truncated title stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut] + "..."
	}

	payload := map[string]any{
		"tasks": map[string]any{
			"organization": input.Organization,
			"title":        title,
			"description":  input.Description,
			"assignees":    input.Assignees,
			"add_users":    input.Assignees,
			"subtask":      input.Conversation != "",
		},
	}
	if input.Conversation != "" {
		payload["tasks"].(map[string]any)["conversation"] = input.Conversation
	}

	var resp struct {
		Tasks Task `json:"tasks"`
	}
	if err := c.doJSON(ctx, "createTask", http.MethodPost, "/v1/tasks", payload, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("task created",
		logging.Operation("createTask"),
		logging.Conversation(input.Conversation),
		logging.Status(logging.StatusSuccess))
	return &resp.Tasks, nil
}

// PostComment posts a plain or markdown comment to a conversation.
func (c *Client) PostComment(ctx context.Context, conversationID, body string) error {
	if body == "" {
		return &Error{Op: "postComment", Err: fmt.Errorf("comment body cannot be empty")}
	}

	payload := map[string]any{
		"comments": map[string]any{
			"body":         body,
			"conversation": conversationID,
		},
	}
	if err := c.doJSON(ctx, "postComment", http.MethodPost, "/v1/comments", payload, nil); err != nil {
		return err
	}

	c.logger.Info("comment posted",
		logging.Operation("postComment"),
		logging.Conversation(conversationID),
		logging.Status(logging.StatusSuccess))
	return nil
}

// AddAssignees adds the given user IDs as assignees of a conversation.
func (c *Client) AddAssignees(ctx context.Context, conversationID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	payload := map[string]any{
		"conversations": map[string]any{
			"add_assignees": userIDs,
		},
	}
	path := "/v1/conversations/" + url.PathEscape(conversationID) + "/assignees"
	return c.doJSON(ctx, "addAssignees", http.MethodPost, path, payload, nil)
}

// operationLabels maps client operation names to the bounded metric label
// values shared with the audit log.
var operationLabels = map[string]string{
	"fetchConversations": instrumentation.OperationFetchConversations,
	"fetchUsers":         instrumentation.OperationFetchUsers,
	"createTask":         instrumentation.OperationCreateTask,
	"postComment":        instrumentation.OperationPostComment,
	"addAssignees":       instrumentation.OperationAddAssignees,
}

func operationLabel(op string) string {
	if label, ok := operationLabels[op]; ok {
		return label
	}
	return op
}

// doJSON performs one authenticated API round trip. A non-2xx response is
// returned as an *Error carrying the status code and the provider's error
// message when the body contains one.
func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, out any) error {
	ctx, span := instrumentation.StartVendorSpan(ctx,
		instrumentation.VendorHost, operationLabel(op))
	defer span.End()

	start := time.Now()
	err := c.do(ctx, op, method, path, payload, out)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordVendorOperation(ctx,
		instrumentation.VendorHost, operationLabel(op),
		status, time.Since(start))

	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", apiErrorMessage(resp.Body))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

// apiErrorMessage extracts a human-readable message from an error response body.
func apiErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "unknown error"
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return strings.TrimSpace(string(data))
}
