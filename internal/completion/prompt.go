package completion

import (
	"fmt"
	"strings"

	"github.com/threadlens/threadlens/internal/thread"
)

const promptTemplate = `Act as a professional business communication analyst.

FIRST, analyze the tone of the following email thread and classify it into one of these categories:
Happy, Satisfied, Neutral, Frustrated, or Angry.

Also provide a confidence score from 1-100 indicating how certain you are about this tone classification. Use these guidelines for confidence scoring:
• 90-100: Very clear emotional indicators, explicit language, multiple confirming signals
• 80-89: Strong indicators with some ambiguity or mixed signals
• 70-79: Moderate indicators, some uncertainty due to professional language masking emotions
• 60-69: Weak indicators, mostly neutral with subtle hints
• 50-59: Very ambiguous, could be interpreted multiple ways
• Below 50: Insufficient information or contradictory signals

Start your response with: "TONE: [category] | CONFIDENCE: [score]"

THEN, read the email thread and extract the key points, decisions, action items, deadlines, and important context. Summarize them in a concise bullet-point format, grouped by category if needed (e.g., Action Items, Key Decisions, Deadlines, Open Questions, etc.).

Ensure that your summary:
• Omits unnecessary conversational or filler content
• Retains the intent and tone of any important statements
• Highlights who is responsible for each action (when mentioned)
• Uses clear and neutral business language

Here's the email thread:

%s`

// SerializeThread renders messages into a single text block preserving the
// input order. Each message contributes a sender and date line, a blank line,
// the body, and a trailing separator.
func SerializeThread(messages []thread.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, fmt.Sprintf("From: %s\nDate: %s\n\n%s\n\n---\n", msg.Sender, msg.Date, msg.Body))
	}
	return strings.Join(blocks, "\n")
}

// BuildPrompt embeds the serialized thread into the analyst instruction
// template.
func BuildPrompt(messages []thread.Message) string {
	return fmt.Sprintf(promptTemplate, SerializeThread(messages))
}
