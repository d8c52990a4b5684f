package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("12"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("12")).
				Bold(true)

	doneCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Strikethrough(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// StatusIcon is the card marker for a status.
func StatusIcon(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusDoing:
		return "◐"
	case models.TaskStatusDone:
		return "✓"
	default:
		return "○"
	}
}

// Column renders one board column as a bordered list of cards. Cursor is
// the selected card index; it only shows when the column is focused.
type Column struct {
	Title   string
	Tasks   []models.Task
	Width   int
	Cursor  int
	Focused bool
}

func NewColumn(title string, width int) *Column {
	return &Column{
		Title: title,
		Tasks: make([]models.Task, 0),
		Width: width,
	}
}

func (c *Column) View() string {
	header := columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", c.Title, len(c.Tasks)))

	var body string
	if len(c.Tasks) == 0 {
		body = placeholderStyle.Render("No tasks")
	} else {
		body = c.renderCards()
	}

	style := columnStyle
	if c.Focused {
		style = focusedColumnStyle
	}
	return style.Width(c.boxWidth()).Render(header + "\n\n" + body)
}

// boxWidth is the style width: the full width minus the border.
func (c *Column) boxWidth() int {
	w := c.Width - 2
	if w < 0 {
		return 0
	}
	return w
}

func (c *Column) renderCards() string {
	// Padding and the two-character cursor/icon prefix.
	nameWidth := c.boxWidth() - 2 - 4
	if nameWidth < 1 {
		nameWidth = 1
	}

	var lines []string
	for i, t := range c.Tasks {
		selected := c.Focused && i == c.Cursor

		cursor := " "
		if selected {
			cursor = ">"
		}

		name := fmt.Sprintf("%s [%s]", t.Title, t.PriorityLabel())
		if due := t.DueLabel(); due != "" {
			name = fmt.Sprintf("%s due %s", name, due)
		}

		style := cardStyle
		switch {
		case selected:
			style = selectedCardStyle
		case t.Status == models.TaskStatusDone:
			style = doneCardStyle
		}

		wrapped := lipgloss.NewStyle().Width(nameWidth).Render(name)
		for j, line := range strings.Split(wrapped, "\n") {
			if j == 0 {
				lines = append(lines, fmt.Sprintf("%s %s %s", cursor, StatusIcon(t.Status), style.Render(line)))
			} else {
				lines = append(lines, fmt.Sprintf("    %s", style.Render(line)))
			}
		}
	}
	return strings.Join(lines, "\n")
}
