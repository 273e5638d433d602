package thread

import (
	"sort"
	"time"

	"github.com/threadlens/threadlens/internal/missive"
)

// Message is one email message prepared for prompting: sender resolved,
// body reduced to plain text, date pre-formatted for display.
type Message struct {
	Sender  string
	Date    string
	Subject string
	Body    string
}

const (
	// UnknownSender is used when a message carries no usable sender name or address.
	UnknownSender = "Unknown Sender"

	// UnknownDate is used when a message carries no usable delivery timestamp.
	UnknownDate = "Unknown Date"

	// dateLayout renders timestamps the way the widget displays them.
	dateLayout = "Jan 2, 2006, 3:04 PM"
)

// Extract turns the raw messages of a conversation into an ordered thread
// suitable for prompting. Messages without a body or without sender information
// are dropped; the rest are sorted oldest first (missing timestamps sort as
// epoch 0). Extract is a pure function of its input.
func Extract(conversation *missive.Conversation) []Message {
	if conversation == nil {
		return nil
	}

	kept := make([]missive.Message, 0, len(conversation.Messages))
	for _, msg := range conversation.Messages {
		if CleanBody(msg.Body) == "" || msg.FromField == nil {
			continue
		}
		kept = append(kept, msg)
	}

	// Stable sort keeps the host's ordering for equal timestamps.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DeliveredAt < kept[j].DeliveredAt
	})

	messages := make([]Message, 0, len(kept))
	for _, msg := range kept {
		subject := msg.Subject
		if subject == "" {
			subject = "No Subject"
		}
		messages = append(messages, Message{
			Sender:  senderName(msg.FromField),
			Date:    formatDate(msg.DeliveredAt),
			Subject: subject,
			Body:    CleanBody(msg.Body),
		})
	}
	return messages
}

// senderName resolves a display name for the sender: display name first,
// then the raw address, then a literal fallback.
func senderName(from *missive.FromField) string {
	if from == nil || from.Address == "" {
		return UnknownSender
	}
	if from.Name != "" {
		return from.Name
	}
	return from.Address
}

// formatDate converts a Unix-seconds timestamp to its display form.
// Missing or malformed timestamps produce a literal fallback instead of failing.
func formatDate(deliveredAt int64) string {
	if deliveredAt <= 0 {
		return UnknownDate
	}
	return time.Unix(deliveredAt, 0).Format(dateLayout)
}
