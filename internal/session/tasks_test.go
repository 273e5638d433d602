package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/missive"
	"github.com/threadlens/threadlens/internal/summary"
)

func taskTestSource() *fakeSource {
	source := newFakeSource()
	source.users = []missive.User{
		{ID: "user-me", DisplayName: "Carol Vance", FirstName: "Carol", LastName: "Vance", Me: true, OrganizationID: "org-1"},
		{ID: "user-bob", DisplayName: "Bob Chen", FirstName: "Bob", LastName: "Chen"},
		{ID: "user-dana", DisplayName: "Dana Smith", FirstName: "Dana", LastName: "Smith"},
	}
	return source
}

func TestCreateTaskAutoAssignsCurrentUser(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	result, err := s.CreateTask(context.Background(), "c1", "Send the final invoice")
	require.NoError(t, err)
	assert.True(t, result.AssignedToSelf)
	assert.Empty(t, result.Assignee)

	require.Len(t, source.createdTasks, 1)
	task := source.createdTasks[0]
	assert.Equal(t, []string{"user-me"}, task.Assignees)
	assert.Equal(t, "Send the final invoice", task.Title)
	assert.Equal(t, "c1", task.Conversation)
	assert.Equal(t, "org-1", task.Organization)
	assert.Equal(t, []string{"user-me"}, source.assignees["c1"])
}

func TestCreateTaskResolvesNamedAssignee(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	result, err := s.CreateTask(context.Background(), "c1", "Bob: review the contract")
	require.NoError(t, err)
	assert.Equal(t, "Bob", result.Assignee)

	require.Len(t, source.createdTasks, 1)
	task := source.createdTasks[0]
	// Directory lookup resolves "Bob"; the name prefix is stripped from the
	// task text.
	assert.Equal(t, []string{"user-me", "user-bob"}, task.Assignees)
	assert.Equal(t, "review the contract", task.Title)
}

func TestCreateTaskSkipsSelfReferences(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	_, err := s.CreateTask(context.Background(), "c1", "You should send the deck")
	require.NoError(t, err)

	require.Len(t, source.createdTasks, 1)
	assert.Equal(t, []string{"user-me"}, source.createdTasks[0].Assignees)
}

func TestCreateTaskFallsBackToUserListing(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	// "Dana" is not in the directory; the host user listing resolves it.
	result, err := s.CreateTask(context.Background(), "c1", "Dana - update the roadmap")
	require.NoError(t, err)
	assert.Equal(t, "Dana Smith", result.Assignee)
	assert.Equal(t, []string{"user-me", "user-dana"}, source.createdTasks[0].Assignees)
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	result, err := s.CreateTask(context.Background(), "c1", "Zelda: file the report")
	require.NoError(t, err)
	assert.Empty(t, result.Assignee)
	assert.Equal(t, []string{"user-me"}, source.createdTasks[0].Assignees)
}

func TestCreateTaskLongTitle(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	long := "Prepare the quarterly business review deck covering all regional performance numbers"
	_, err := s.CreateTask(context.Background(), "c1", long)
	require.NoError(t, err)
	// Truncation to the title limit happens in the API client, not here.
	assert.Equal(t, long, source.createdTasks[0].Title)
}

func TestAssignConversation(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	require.NoError(t, s.AssignConversation(context.Background(), "c1", "bob"))
	assert.Equal(t, []string{"user-bob"}, source.assignees["c1"])

	// Unknown names are logged and skipped, not errors.
	require.NoError(t, s.AssignConversation(context.Background(), "c1", "Zelda"))
	assert.Equal(t, []string{"user-bob"}, source.assignees["c1"])
}

func TestFormatComment(t *testing.T) {
	body := FormatComment(summary.Section{Title: "Key Decisions", Content: "- Ship Friday"})
	assert.Equal(t, "**Key Decisions**\n\n- Ship Friday", body)
}

func TestPostSectionComments(t *testing.T) {
	source := taskTestSource()
	s := newTestSession(t, source, &fakeSummarizer{})

	sections := []summary.Section{
		{Title: "Summary", Content: "Short week."},
		{Title: "Action Items", Content: "- Send invoice"},
	}

	report, err := s.PostSectionComments(context.Background(), "c1", sections)
	require.NoError(t, err)
	assert.Equal(t, CommentReport{Posted: 2}, report)
	require.Len(t, source.comments, 2)
	assert.Equal(t, "**Summary**\n\nShort week.", source.comments[0])
}

func TestPostSectionCommentsPartialFailure(t *testing.T) {
	source := taskTestSource()
	failing := FormatComment(summary.Section{Title: "Deadlines", Content: "- Friday"})
	source.commentErr[failing] = errors.New("rate limited")

	s := newTestSession(t, source, &fakeSummarizer{})

	sections := []summary.Section{
		{Title: "Summary", Content: "Short week."},
		{Title: "Deadlines", Content: "- Friday"},
		{Title: "Action Items", Content: "- Send invoice"},
	}

	report, err := s.PostSectionComments(context.Background(), "c1", sections)
	require.NoError(t, err)
	assert.Equal(t, CommentReport{Posted: 2, Failed: 1}, report)
}

func TestPostSectionCommentsEmpty(t *testing.T) {
	s := newTestSession(t, taskTestSource(), &fakeSummarizer{})

	_, err := s.PostSectionComments(context.Background(), "c1", nil)
	assert.Error(t, err)
}

func TestCreateTaskCountsOnce(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	require.NoError(t, err)

	source := taskTestSource()
	s, err := New(Config{Source: source, Summarizer: &fakeSummarizer{}, Metrics: metrics})
	require.NoError(t, err)

	_, err = s.CreateTask(context.Background(), "c1", "Send the final invoice")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var sum int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "tasks_created_total" {
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
