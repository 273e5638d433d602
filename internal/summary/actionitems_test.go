package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupActionItems(t *testing.T) {
	content := strings.Join([]string{
		"**Alice**",
		"do X",
		"**Bob**",
		"do Y",
		"do Z",
	}, "\n")

	groups := GroupActionItems(content)
	require.Len(t, groups, 2)
	assert.Equal(t, "Alice", groups[0].Assignee)
	assert.Equal(t, []string{"do X"}, groups[0].Tasks)
	assert.Equal(t, "Bob", groups[1].Assignee)
	assert.Equal(t, []string{"do Y", "do Z"}, groups[1].Tasks)
}

func TestGroupActionItemsStandaloneBeforeHeader(t *testing.T) {
	content := strings.Join([]string{
		"- send the recap email",
		"**Alice**:",
		"- review the contract",
	}, "\n")

	groups := GroupActionItems(content)
	require.Len(t, groups, 2)
	assert.Empty(t, groups[0].Assignee)
	assert.Equal(t, []string{"send the recap email"}, groups[0].Tasks)
	assert.Equal(t, "Alice", groups[1].Assignee)
	assert.Equal(t, []string{"review the contract"}, groups[1].Tasks)
}

func TestGroupActionItemsTrailingEmptyGroupDropped(t *testing.T) {
	content := strings.Join([]string{
		"**Alice**",
		"do X",
		"**Bob**",
	}, "\n")

	groups := GroupActionItems(content)
	require.Len(t, groups, 1)
	assert.Equal(t, "Alice", groups[0].Assignee)
}

func TestGroupActionItemsBulletedPersonHeader(t *testing.T) {
	content := strings.Join([]string{
		"- **Alice Ray**:",
		"- call the vendor",
	}, "\n")

	groups := GroupActionItems(content)
	require.Len(t, groups, 1)
	assert.Equal(t, "Alice Ray", groups[0].Assignee)
	assert.Equal(t, []string{"call the vendor"}, groups[0].Tasks)
}

func TestGroupActionItemsEmptyContent(t *testing.T) {
	assert.Empty(t, GroupActionItems(""))
	assert.Empty(t, GroupActionItems("\n\n"))
}

func TestStripBullet(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"- item", "item"},
		{"• item", "item"},
		{"* item", "item"},
		{"**bold** stays", "**bold** stays"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripBullet(tt.input))
	}
}

func TestIsActionItems(t *testing.T) {
	assert.True(t, IsActionItems("Action Items"))
	assert.True(t, IsActionItems("ACTION ITEM LIST"))
	assert.False(t, IsActionItems("Key Decisions"))
}

func TestCountItems(t *testing.T) {
	content := strings.Join([]string{
		"**Alice**",
		"do X",
		"",
		"do Y",
	}, "\n")

	assert.Equal(t, 2, CountItems(content))
}

func TestDetectAssignee(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantAssignee string
		wantText     string
	}{
		{"full name colon", "John Smith: send the invoice", "John Smith", "send the invoice"},
		{"full name dash", "John Smith - send the invoice", "John Smith", "send the invoice"},
		{"first name colon", "John: send the invoice", "John", "send the invoice"},
		{"first name dash", "John - send the invoice", "John", "send the invoice"},
		{"full name modal", "John Smith should send the invoice", "John Smith", "send the invoice"},
		{"first name modal", "John will send the invoice", "John", "send the invoice"},
		{"no assignee", "send the invoice", "", "send the invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignee, text := DetectAssignee(tt.input)
			assert.Equal(t, tt.wantAssignee, assignee)
			assert.Equal(t, tt.wantText, text)
		})
	}
}
