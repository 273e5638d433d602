package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/threadlens/threadlens/internal/directory"
	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
	"github.com/threadlens/threadlens/internal/missive"
	"github.com/threadlens/threadlens/internal/summary"
	"github.com/threadlens/threadlens/internal/thread"
	"github.com/threadlens/threadlens/internal/tone"
)

// ConversationSource fetches conversations and users from the host.
type ConversationSource interface {
	FetchConversations(ctx context.Context, ids []string) ([]missive.Conversation, error)
	FetchUsers(ctx context.Context) ([]missive.User, error)
	CurrentUser(ctx context.Context) (*missive.User, error)
	CreateTask(ctx context.Context, input missive.TaskInput) (*missive.Task, error)
	PostComment(ctx context.Context, conversationID, body string) error
	AddAssignees(ctx context.Context, conversationID string, userIDs []string) error
}

// Summarizer produces the raw completion text for a thread.
type Summarizer interface {
	Summarize(ctx context.Context, messages []thread.Message) (string, error)
}

// ErrUnchangedSelection is returned by Select when the newly selected
// conversation is the one already displayed. Callers skip reprocessing.
var ErrUnchangedSelection = errors.New("session: selection unchanged")

// ErrStaleSelection is returned when a summary finished after a newer
// selection superseded it. The result must be discarded.
var ErrStaleSelection = errors.New("session: selection superseded")

// ErrNoMessages is returned when a conversation has no summarizable content.
var ErrNoMessages = errors.New("session: conversation has no messages")

// SelectionError reports a selection that is not exactly one conversation.
type SelectionError struct {
	Count int
}

func (e *SelectionError) Error() string {
	if e.Count == 0 {
		return "session: no conversation selected"
	}
	return fmt.Sprintf("session: %d conversations selected, select only one", e.Count)
}

// Summary is the fully processed result for one conversation.
type Summary struct {
	ConversationID string
	Subject        string
	Tone           tone.Result
	Sections       []summary.Section
	Messages       []thread.Message
}

// Session holds the single currently selected conversation and serializes
// summarization around it. Each selection receives a monotonically increasing
// token; a summary whose token is no longer current when it completes is
// dropped instead of overwriting a newer selection's result.
type Session struct {
	source     ConversationSource
	summarizer Summarizer
	directory  *directory.Directory
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger

	mu        sync.Mutex
	currentID string
	token     uint64
}

// Config carries the session's collaborators.
type Config struct {
	Source     ConversationSource
	Summarizer Summarizer
	Directory  *directory.Directory
	Logger     *slog.Logger

	// Metrics records summary, task and comment metrics. Optional.
	Metrics *instrumentation.Metrics

	// Audit logs host mutations. Optional.
	Audit *instrumentation.AuditLogger
}

// New creates a Session.
func New(cfg Config) (*Session, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("session: conversation source is required")
	}
	if cfg.Summarizer == nil {
		return nil, fmt.Errorf("session: summarizer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return &Session{
		source:     cfg.Source,
		summarizer: cfg.Summarizer,
		directory:  cfg.Directory,
		logger:     logging.WithComponent(logger, "session"),
		metrics:    metrics,
		audit:      cfg.Audit,
	}, nil
}

// Select records a new conversation selection and summarizes it. It enforces
// the single-selection rule, skips a reselection of the current conversation
// and discards results that were superseded by a later Select call.
func (s *Session) Select(ctx context.Context, conversationIDs []string) (*Summary, error) {
	if len(conversationIDs) != 1 {
		s.reset()
		return nil, &SelectionError{Count: len(conversationIDs)}
	}
	conversationID := conversationIDs[0]

	s.mu.Lock()
	if s.currentID == conversationID {
		s.mu.Unlock()
		return nil, ErrUnchangedSelection
	}
	s.currentID = conversationID
	s.token++
	token := s.token
	s.mu.Unlock()

	log := s.logger.With(
		logging.Operation("select"),
		logging.Conversation(conversationID),
		slog.Uint64("selection_token", token))
	log.Debug("processing selection")

	s.metrics.IncrementActiveSelections(ctx)
	result, err := s.summarize(ctx, conversationID)
	s.metrics.DecrementActiveSelections(ctx)

	if !s.isCurrent(token) {
		log.Debug("dropping stale result")
		return nil, ErrStaleSelection
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentConversation returns the ID of the currently selected conversation,
// or empty when none is selected.
func (s *Session) CurrentConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
	s.token++
}

func (s *Session) isCurrent(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.token
}

func (s *Session) summarize(ctx context.Context, conversationID string) (*Summary, error) {
	conversations, err := s.source.FetchConversations(ctx, []string{conversationID})
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}
	if len(conversations) == 0 {
		return nil, fmt.Errorf("session: conversation %s not found", conversationID)
	}
	conversation := conversations[0]

	messages := thread.Extract(&conversation)
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	raw, err := s.summarizer.Summarize(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("summarizing conversation: %w", err)
	}

	toneResult, remainder := tone.Extract(raw)
	sections := summary.Parse(remainder)
	if len(sections) == 0 {
		// Unstructured output still renders as a single block.
		sections = []summary.Section{{Title: summary.PreambleTitle, Content: strings.TrimSpace(remainder)}}
	}

	s.metrics.RecordSummary(ctx, string(toneResult.Tone), len(sections))
	s.logger.Debug("conversation summarized",
		logging.Conversation(conversationID),
		slog.Int("message_count", len(messages)),
		slog.Int("section_count", len(sections)),
		slog.String("tone", string(toneResult.Tone)),
		logging.Status(logging.StatusSuccess))

	return &Summary{
		ConversationID: conversationID,
		Subject:        conversation.Subject,
		Tone:           toneResult,
		Sections:       sections,
		Messages:       messages,
	}, nil
}
