package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
	"github.com/threadlens/threadlens/internal/missive"
	"github.com/threadlens/threadlens/internal/summary"
)

// commentDelay spaces out consecutive comment posts so the host API is not
// hammered.
const commentDelay = 500 * time.Millisecond

// TaskResult reports how a created task ended up assigned.
type TaskResult struct {
	Task *missive.Task

	// AssignedToSelf is set when the task was auto-assigned to the current
	// user.
	AssignedToSelf bool

	// Assignee is the display name of the additional assignee resolved from
	// the task text, when one was found.
	Assignee string
}

// CreateTask creates a host task from one action-item line. The current user
// is assigned by default; when the task text names someone other than "you"
// or "me", that person is resolved through the directory and, failing that,
// through the host user listing, and added as a second assignee.
func (s *Session) CreateTask(ctx context.Context, conversationID, taskText string) (*TaskResult, error) {
	log := s.logger.With(
		logging.Operation("createTask"),
		logging.Conversation(conversationID))

	currentUser, err := s.source.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}

	assigneeName, cleanText := summary.DetectAssignee(taskText)

	assignees := []string{currentUser.ID}
	result := &TaskResult{AssignedToSelf: true}

	if isOtherPerson(assigneeName) {
		if userID, matched, ok := s.resolveAssignee(ctx, assigneeName); ok && userID != currentUser.ID {
			assignees = append(assignees, userID)
			result.Assignee = matched
		} else if !ok {
			log.Warn("assignee not resolved", slog.String("assignee", assigneeName))
		}
	}

	mutation := instrumentation.NewHostMutation(instrumentation.OperationCreateTask, conversationID).
		WithUser(currentUser.Email).
		WithSpanContext(ctx)

	task, err := s.source.CreateTask(ctx, missive.TaskInput{
		Title:        cleanText,
		Description:  cleanText,
		Assignees:    assignees,
		Conversation: conversationID,
		Organization: currentUser.OrganizationID,
	})
	s.audit.LogMutation(ctx, mutation.Complete(err == nil, err))
	if err != nil {
		s.metrics.RecordTaskCreatedForUser(ctx, instrumentation.StatusError, currentUser.Email)
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.metrics.RecordTaskCreatedForUser(ctx, instrumentation.StatusSuccess, currentUser.Email)

	// Assign the conversation as well so the task is visible in the
	// assignee's inbox, not just on the task list.
	if conversationID != "" {
		if err := s.source.AddAssignees(ctx, conversationID, assignees); err != nil {
			log.Warn("conversation assignment failed", logging.Err(err))
		}
	}

	log.Info("task created",
		slog.Int("assignee_count", len(assignees)),
		logging.UserHash(currentUser.Email),
		logging.Status(logging.StatusSuccess))

	result.Task = task
	return result, nil
}

// AssignConversation assigns the conversation to the named person, resolving
// the name the same way CreateTask does. An unresolvable name is not an
// error; the conversation is simply left unassigned.
func (s *Session) AssignConversation(ctx context.Context, conversationID, assigneeName string) error {
	userID, matched, ok := s.resolveAssignee(ctx, assigneeName)
	if !ok {
		s.logger.Warn("no user matches assignee",
			logging.Operation("assignConversation"),
			slog.String("assignee", assigneeName))
		return nil
	}

	mutation := instrumentation.NewHostMutation(instrumentation.OperationAddAssignees, conversationID).
		WithSpanContext(ctx)
	err := s.source.AddAssignees(ctx, conversationID, []string{userID})
	s.audit.LogMutation(ctx, mutation.Complete(err == nil, err))
	if err != nil {
		return fmt.Errorf("assigning conversation to %s: %w", matched, err)
	}
	return nil
}

// resolveAssignee maps a human name to a user ID, trying the injected
// directory first and falling back to matching against the host user listing
// by display name, full name or first name.
func (s *Session) resolveAssignee(ctx context.Context, name string) (userID, matchedName string, ok bool) {
	if id, found := s.directory.Lookup(name); found {
		return id, name, true
	}

	users, err := s.source.FetchUsers(ctx)
	if err != nil {
		s.logger.Warn("user listing unavailable for assignee match", logging.Err(err))
		return "", "", false
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	for _, user := range users {
		displayName := strings.ToLower(user.DisplayName)
		fullName := strings.ToLower(strings.TrimSpace(user.FirstName + " " + user.LastName))
		firstName := strings.ToLower(user.FirstName)

		if strings.Contains(displayName, needle) ||
			(fullName != "" && strings.Contains(fullName, needle)) ||
			firstName == needle {
			return user.ID, user.DisplayName, true
		}
	}
	return "", "", false
}

// isOtherPerson reports whether a detected assignee names someone other than
// the current user. "you" and "me" refer to the current user, who is already
// assigned.
func isOtherPerson(name string) bool {
	switch strings.ToLower(name) {
	case "", "you", "me":
		return false
	}
	return true
}

// FormatComment renders one summary section as a host comment body.
func FormatComment(section summary.Section) string {
	return fmt.Sprintf("**%s**\n\n%s", section.Title, section.Content)
}

// CommentReport tallies a PostSectionComments run.
type CommentReport struct {
	Posted int
	Failed int
}

// PostSectionComments posts every section as a separate comment on the
// conversation, pausing between posts. A failed section is counted and
// skipped; the remaining sections are still posted.
func (s *Session) PostSectionComments(ctx context.Context, conversationID string, sections []summary.Section) (CommentReport, error) {
	if len(sections) == 0 {
		return CommentReport{}, fmt.Errorf("session: no sections to comment")
	}

	log := s.logger.With(
		logging.Operation("postComments"),
		logging.Conversation(conversationID))

	var report CommentReport
	for i, section := range sections {
		if i > 0 {
			select {
			case <-time.After(commentDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		mutation := instrumentation.NewHostMutation(instrumentation.OperationPostComment, conversationID).
			WithSpanContext(ctx)
		err := s.source.PostComment(ctx, conversationID, FormatComment(section))
		s.audit.LogMutation(ctx, mutation.Complete(err == nil, err))
		if err != nil {
			log.Error("comment failed", logging.Section(section.Title), logging.Err(err))
			s.metrics.RecordCommentPosted(ctx, instrumentation.StatusError)
			report.Failed++
			continue
		}
		s.metrics.RecordCommentPosted(ctx, instrumentation.StatusSuccess)
		report.Posted++
	}

	log.Info("comments posted",
		slog.Int("posted", report.Posted),
		slog.Int("failed", report.Failed))
	return report, nil
}
