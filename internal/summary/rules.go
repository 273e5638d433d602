package summary

import "regexp"

// headerRule is one pattern in the header-detection heuristic. Rules are
// evaluated in a fixed order with first-match-wins semantics; all rules agree
// that a matching line is a header, so precedence only matters for reporting
// which rule fired.
type headerRule struct {
	name    string
	pattern *regexp.Regexp
}

// headerRules is the ordered rule set for classifying a trimmed line as a
// section header. Model output uses inconsistent markdown conventions for
// headers (plain label with colon, bold emphasis, hash headings), so the rule
// set is deliberately permissive: it tolerates formatting drift at the cost of
// the occasional false positive on short capitalized lines. There is no
// correction or backtracking pass.
var headerRules = []headerRule{
	{
		// Standard section names at the start of a line
		name:    "known-category",
		pattern: regexp.MustCompile(`(?i)^(action items?|key decisions?|deadlines?|open questions?|important context|summary|overview|next steps?|follow.?up)`),
	},
	{
		// Text followed by a colon, e.g. "Action Items:"
		name:    "label-colon",
		pattern: regexp.MustCompile(`(?i)^[a-z\s]+:$`),
	},
	{
		// Markdown headings
		name:    "markdown-heading",
		pattern: regexp.MustCompile(`^#+\s+`),
	},
	{
		// Bold text without colon, e.g. "**Action Items**"
		name:    "bold",
		pattern: regexp.MustCompile(`^\*\*[^*]+\*\*$`),
	},
	{
		// Bold text with colon inside, e.g. "**Action Items:**"
		name:    "bold-colon",
		pattern: regexp.MustCompile(`^\*\*[^*:]+:[^*]*\*\*$`),
	},
	{
		// Additional common section names
		name:    "extra-category",
		pattern: regexp.MustCompile(`(?i)^(participants?|summary of key points?|key points?)`),
	},
}

// matchHeader reports whether a trimmed line is a section header, and if so,
// the name of the first rule that matched.
func matchHeader(line string) (string, bool) {
	for _, rule := range headerRules {
		if rule.pattern.MatchString(line) {
			return rule.name, true
		}
	}
	return "", false
}

// IsHeader reports whether a trimmed line is recognized as a section header.
func IsHeader(line string) bool {
	_, ok := matchHeader(line)
	return ok
}

// titleMarkers strips the markdown and emphasis characters a header line may
// carry so only the title text remains.
var titleMarkers = regexp.MustCompile(`[*:#]`)

// headerTitle extracts the section title from a header line.
func headerTitle(line string) string {
	return trimSpace(titleMarkers.ReplaceAllString(line, ""))
}
