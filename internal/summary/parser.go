package summary

import "strings"

// Section is a titled, ordered chunk of the parsed summary text. Content is
// the newline-joined body text belonging to the section, trimmed at the ends.
type Section struct {
	Title   string
	Content string
}

// PreambleTitle is the title given to content that appears before any header.
const PreambleTitle = "Summary"

func trimSpace(s string) string { return strings.TrimSpace(s) }

// Parse segments free text into an ordered list of titled sections using the
// header heuristic. Lines before the first header are collected into a lazily
// created "Summary" section, so input with no headers at all degrades to a
// single section holding the full text. Sections whose trimmed content is
// empty are dropped.
func Parse(text string) []Section {
	var (
		sections     []Section
		currentTitle string
		buffer       []string
		sectionOpen  bool
		preamble     []string
	)

	closeSection := func() {
		if sectionOpen {
			sections = append(sections, Section{
				Title:   currentTitle,
				Content: trimSpace(strings.Join(buffer, "\n")),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := trimSpace(line)

		switch {
		case IsHeader(trimmed):
			closeSection()
			currentTitle = headerTitle(trimmed)
			buffer = nil
			sectionOpen = true
		case trimmed != "" && sectionOpen:
			// Buffer the original line so interior indentation survives.
			buffer = append(buffer, line)
		case trimmed != "":
			preamble = append(preamble, line)
		}
		// Blank lines neither open nor close a section.
	}
	closeSection()

	if len(preamble) > 0 {
		head := Section{Title: PreambleTitle, Content: trimSpace(strings.Join(preamble, "\n"))}
		sections = append([]Section{head}, sections...)
	}

	// Drop sections with no remaining content.
	result := sections[:0]
	for _, s := range sections {
		if trimSpace(s.Content) != "" {
			result = append(result, s)
		}
	}
	return result
}
