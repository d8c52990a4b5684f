package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// maxActivityLines bounds the log; older messages are dropped first.
const maxActivityLines = 200

// ActivityLog shows the most recent board messages in a scrolling viewport.
type ActivityLog struct {
	viewport viewport.Model
	lines    []string
	ready    bool
}

func NewActivityLog(width, height int) *ActivityLog {
	return &ActivityLog{
		viewport: viewport.New(width, height),
	}
}

func (a *ActivityLog) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !a.ready {
		a.viewport = viewport.New(vpWidth, height)
		a.ready = true
	} else {
		a.viewport.Width = vpWidth
		a.viewport.Height = height
	}
	a.updateContent()
}

func (a *ActivityLog) Add(msg string) {
	a.append(messageStyle.Render(msg))
}

func (a *ActivityLog) AddError(msg string) {
	a.append(errorStyle.Render(msg))
}

func (a *ActivityLog) append(line string) {
	a.lines = append(a.lines, line)
	if n := len(a.lines) - maxActivityLines; n > 0 {
		a.lines = append(a.lines[:0], a.lines[n:]...)
	}
	a.updateContent()
}

func (a *ActivityLog) Reset() {
	a.lines = nil
	a.updateContent()
}

func (a *ActivityLog) Len() int {
	return len(a.lines)
}

func (a *ActivityLog) updateContent() {
	content := strings.Join(a.lines, "\n")
	if width := a.viewport.Width; width > 0 {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	a.viewport.SetContent(content)
	a.viewport.GotoBottom()
}

// AtBottom reports whether the newest message is in view.
func (a *ActivityLog) AtBottom() bool {
	return a.viewport.AtBottom()
}

// Update scrolls the log on page keys and the mouse wheel.
func (a *ActivityLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

func (a *ActivityLog) View() string {
	if !a.ready {
		return ""
	}

	if a.viewport.TotalLineCount() <= a.viewport.Height {
		return a.viewport.View()
	}

	h := a.viewport.Height
	handlePos := int(float64(h-1) * a.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, a.viewport.View(), sb.String())
}
