package missive

import "fmt"

// Conversation represents a Missive conversation with its messages.
type Conversation struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Message represents a single email message within a conversation.
// Fields are optional on the wire; consumers must tolerate missing values.
type Message struct {
	ID          string     `json:"id,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body,omitempty"`
	FromField   *FromField `json:"from_field,omitempty"`
	DeliveredAt int64      `json:"delivered_at,omitempty"`
}

// FromField identifies the sender of a message.
type FromField struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// User represents a Missive user.
// Exactly one user in a team listing has Me set.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Me          bool   `json:"me,omitempty"`

	// OrganizationID identifies the organization the user belongs to. Tasks
	// created for this user are filed under this organization.
	OrganizationID string `json:"organization_id,omitempty"`
}

// TaskInput is the input for creating a task.
type TaskInput struct {
	// Title is the short task title. CreateTask truncates it to 50 characters.
	Title string

	// Description is the full task text.
	Description string

	// Assignees are user IDs the task is assigned to.
	Assignees []string

	// Conversation is the conversation the task is attached to.
	// When set, the task is created as a subtask of the conversation.
	Conversation string

	// Organization is the Missive organization ID.
	Organization string
}

// Task represents a created task as returned by the API.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
	State       string   `json:"state,omitempty"`
}

// Error represents an error returned by the Missive API or transport.
type Error struct {
	// Op is the operation that failed (e.g. "fetchConversations", "createTask").
	Op string

	// StatusCode is the HTTP status code, if a response was received.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("missive %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("missive %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Err
}
