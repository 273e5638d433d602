package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdownHeaders(t *testing.T) {
	input := "## Action Items\n- a\n- b\n## Deadlines\n- c"

	sections := Parse(input)
	require.Len(t, sections, 2)
	assert.Equal(t, "Action Items", sections[0].Title)
	assert.Equal(t, "- a\n- b", sections[0].Content)
	assert.Equal(t, "Deadlines", sections[1].Title)
	assert.Equal(t, "- c", sections[1].Content)
}

func TestParseNoHeadersDegradesToSummary(t *testing.T) {
	input := "just one paragraph of prose"

	sections := Parse(input)
	require.Len(t, sections, 1)
	assert.Equal(t, PreambleTitle, sections[0].Title)
	assert.Equal(t, "just one paragraph of prose", sections[0].Content)
}

func TestParseMixedHeaderStyles(t *testing.T) {
	input := strings.Join([]string{
		"**Key Decisions:**",
		"- ship on Friday",
		"",
		"Open Questions:",
		"- who owns QA",
		"# Next Steps",
		"- schedule retro",
	}, "\n")

	sections := Parse(input)
	require.Len(t, sections, 3)
	assert.Equal(t, "Key Decisions", sections[0].Title)
	assert.Equal(t, "- ship on Friday", sections[0].Content)
	assert.Equal(t, "Open Questions", sections[1].Title)
	assert.Equal(t, "- who owns QA", sections[1].Content)
	assert.Equal(t, "Next Steps", sections[2].Title)
	assert.Equal(t, "- schedule retro", sections[2].Content)
}

func TestParsePreambleBeforeHeaders(t *testing.T) {
	input := "The thread covers the Q3 launch.\n## Deadlines\n- June 30"

	sections := Parse(input)
	require.Len(t, sections, 2)
	assert.Equal(t, PreambleTitle, sections[0].Title)
	assert.Equal(t, "The thread covers the Q3 launch.", sections[0].Content)
	assert.Equal(t, "Deadlines", sections[1].Title)
}

func TestParseDropsEmptySections(t *testing.T) {
	input := "## Action Items\n## Deadlines\n- c"

	sections := Parse(input)
	require.Len(t, sections, 1)
	assert.Equal(t, "Deadlines", sections[0].Title)
}

func TestParseBlankLinesIgnored(t *testing.T) {
	input := "## Summary\n\nfirst line\n\nsecond line\n"

	sections := Parse(input)
	require.Len(t, sections, 1)
	assert.Equal(t, "first line\nsecond line", sections[0].Content)
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n\n"))
}

// Re-feeding markdown-headed output through the parser must detect the same
// titles again.
func TestParseStableUnderSecondPass(t *testing.T) {
	input := "## Action Items\n- a\n- b\n## Deadlines\n- c\n## Open Questions\n- d"
	first := Parse(input)
	require.NotEmpty(t, first)

	var rejoined []string
	for _, s := range first {
		rejoined = append(rejoined, "## "+s.Title+"\n"+s.Content)
	}
	second := Parse(strings.Join(rejoined, "\n"))

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestIsHeaderRules(t *testing.T) {
	tests := []struct {
		line     string
		isHeader bool
		rule     string
	}{
		{"Action Items", true, "known-category"},
		{"action item", true, "known-category"},
		{"Follow-up", true, "known-category"},
		{"Followup", true, "known-category"},
		{"Deadlines:", true, "known-category"},
		{"Budget Review:", true, "label-colon"},
		{"## Deadlines", true, "markdown-heading"},
		{"#Nope", false, ""},
		{"**Key Decisions**", true, "bold"},
		{"**Key Decisions:**", true, "bold"},
		{"**Blocked: waiting on legal**", true, "bold"},
		{"Participants", true, "extra-category"},
		{"Key Points", true, "extra-category"},
		{"- a bullet item", false, ""},
		{"regular prose line", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rule, ok := matchHeader(tt.line)
			assert.Equal(t, tt.isHeader, ok)
			if tt.isHeader {
				assert.Equal(t, tt.rule, rule)
			}
		})
	}
}

func TestHeaderTitleStripsMarkers(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"## Action Items", "Action Items"},
		{"**Key Decisions:**", "Key Decisions"},
		{"Deadlines:", "Deadlines"},
		{"### Open Questions:", "Open Questions"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, headerTitle(tt.line))
	}
}
