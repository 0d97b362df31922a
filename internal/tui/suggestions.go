package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions provides autocomplete for the command bar.
type Suggestions struct {
	items       []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	kind        string // "command" or "tag"
	tags        []string
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command", "tag"
}

var commandSuggestions = []SuggestionItem{
	{Text: "add", Description: "Create a task: add <title> [#tag] [!high] [due:2025-01-31] [every:weekly]", Type: "command"},
	{Text: "edit", Description: "Rename the current task", Type: "command"},
	{Text: "notes", Description: "Set notes on the current task", Type: "command"},
	{Text: "due", Description: "Set or clear (due none) the due date", Type: "command"},
	{Text: "prio", Description: "Set priority: high, medium or low", Type: "command"},
	{Text: "every", Description: "Set recurrence: daily, weekly, monthly or none", Type: "command"},
	{Text: "tag", Description: "Tag the current task or selection", Type: "command"},
	{Text: "archive", Description: "Archive the current task or selection", Type: "command"},
	{Text: "unarchive", Description: "Restore the current archived task", Type: "command"},
	{Text: "dup", Description: "Duplicate the current task", Type: "command"},
	{Text: "sub", Description: "Add a subtask to the current task", Type: "command"},
	{Text: "search", Description: "Filter by text (empty clears)", Type: "command"},
	{Text: "clear", Description: "Delete completed tasks", Type: "command"},
	{Text: "export", Description: "Write all tasks to a file", Type: "command"},
	{Text: "import", Description: "Merge tasks from a file", Type: "command"},
	{Text: "undo", Description: "Revert the last change", Type: "command"},
	{Text: "quit", Description: "Leave tickit", Type: "command"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{items: commandSuggestions}
}

// SetTags updates the known tags offered after "tag ".
func (s *Suggestions) SetTags(tags []string) {
	s.tags = tags
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	if input == "" {
		s.hide()
		return
	}

	if rest, ok := strings.CutPrefix(input, "tag "); ok {
		s.kind = "tag"
		s.items = make([]SuggestionItem, len(s.tags))
		for i, tag := range s.tags {
			s.items[i] = SuggestionItem{Text: "tag " + tag, Description: "existing tag", Type: "tag"}
		}
		s.visible = true
		s.filter(strings.ToLower("tag " + rest))
		return
	}

	if strings.Contains(input, " ") {
		s.hide()
		return
	}
	s.kind = "command"
	s.items = commandSuggestions
	s.visible = true
	s.filter(strings.ToLower(input))
}

func (s *Suggestions) hide() {
	s.visible = false
	s.filtered = nil
	s.kind = ""
}

func (s *Suggestions) filter(query string) {
	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.HasPrefix(strings.ToLower(item.Text), query) {
			s.filtered = append(s.filtered, item)
		}
	}
	s.selectedIdx = 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(width-4, 20))

	itemStyle := lipgloss.NewStyle().Foreground(fgColor)
	descStyle := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	pickStyle := lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true)

	header := "Commands"
	if s.kind == "tag" {
		header = "Tags"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(header))
	b.WriteString("\n")

	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", len(s.filtered)-maxVisible)))
			break
		}
		var line string
		if i == s.selectedIdx {
			line = pickStyle.Render("▶ "+item.Text) + " " + pickStyle.Render(item.Description)
		} else {
			line = itemStyle.Render("  "+item.Text) + " " + descStyle.Render(item.Description)
		}
		b.WriteString(line + "\n")
	}

	return boxStyle.Render(b.String())
}

// knownTags collects distinct tags in sorted order.
func knownTags(tags [][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range tags {
		for _, tag := range list {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out
}
