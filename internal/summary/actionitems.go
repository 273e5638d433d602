package summary

import (
	"regexp"
	"strings"
)

// Group is a run of action items attributed to one assignee. A standalone
// item that appeared before any person header is represented as a Group with
// an empty Assignee holding a single task.
type Group struct {
	Assignee string
	Tasks    []string
}

// personHeader matches a bold person name line, with or without a trailing
// colon, e.g. "**Alice Ray**" or "**Alice Ray**:".
var personHeader = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*$`)

// GroupActionItems groups the content lines of an action-items section by
// detected assignee, preserving encounter order. Lines before the first
// person header become standalone single-task groups; a person header with no
// following task lines produces no group at all.
func GroupActionItems(content string) []Group {
	var (
		groups       []Group
		currentName  string
		currentTasks []string
		personOpen   bool
	)

	flush := func() {
		if personOpen && len(currentTasks) > 0 {
			groups = append(groups, Group{Assignee: currentName, Tasks: currentTasks})
		}
		currentTasks = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		clean := stripBullet(trimmed)
		if m := personHeader.FindStringSubmatch(clean); m != nil {
			flush()
			currentName = strings.TrimSpace(m[1])
			personOpen = true
			continue
		}

		if personOpen {
			currentTasks = append(currentTasks, clean)
		} else {
			groups = append(groups, Group{Tasks: []string{clean}})
		}
	}
	flush()

	return groups
}

// stripBullet removes a single leading bullet marker and the whitespace after
// it. A "*" that opens bold emphasis ("**") is not a bullet and is left alone.
func stripBullet(s string) string {
	switch {
	case strings.HasPrefix(s, "•"):
		return strings.TrimLeft(strings.TrimPrefix(s, "•"), " \t")
	case strings.HasPrefix(s, "-"):
		return strings.TrimLeft(strings.TrimPrefix(s, "-"), " \t")
	case strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "**"):
		return strings.TrimLeft(strings.TrimPrefix(s, "*"), " \t")
	}
	return s
}

// IsActionItems reports whether a section title denotes an action-items
// section.
func IsActionItems(title string) bool {
	return strings.Contains(strings.ToLower(title), "action item")
}

// CountItems counts the content lines of a section, excluding person header
// lines. The widget shows this as the section's item badge.
func CountItems(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || personHeader.MatchString(trimmed) {
			continue
		}
		count++
	}
	return count
}

// assigneePatterns detect an assignee name leading a free-text task line.
// Tried in order; the first match wins.
var assigneePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z][a-z]+ [A-Z][a-z]+):\s*(.+)$`),                        // "John Smith: do something"
	regexp.MustCompile(`^([A-Z][a-z]+ [A-Z][a-z]+)\s*-\s*(.+)$`),                     // "John Smith - do something"
	regexp.MustCompile(`^([A-Z][a-z]+):\s*(.+)$`),                                    // "John: do something"
	regexp.MustCompile(`^([A-Z][a-z]+)\s*-\s*(.+)$`),                                 // "John - do something"
	regexp.MustCompile(`(?i)^([A-Z][a-z]+ [A-Z][a-z]+)\s+(?:should|needs?|must|will)\s+(.+)$`), // "John Smith should do something"
	regexp.MustCompile(`(?i)^([A-Z][a-z]+)\s+(?:should|needs?|must|will)\s+(.+)$`),             // "John should do something"
}

// DetectAssignee extracts an assignee name from a free-text task line, such
// as "John: send the invoice". It returns the name and the task text with the
// name prefix removed, or an empty name and the original text when no pattern
// matches.
func DetectAssignee(taskText string) (assignee, cleanText string) {
	for _, pattern := range assigneePatterns {
		if m := pattern.FindStringSubmatch(taskText); m != nil {
			return m[1], m[2]
		}
	}
	return "", taskText
}
