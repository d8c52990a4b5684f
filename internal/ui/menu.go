package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	summaryStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const logo = `
 _            _    _                         _
| |_ __ _ ___| | _| |__   ___   __ _ _ __ __| |
| __/ _' / __| |/ / '_ \ / _ \ / _' | '__/ _' |
| || (_| \__ \   <| |_) | (_) | (_| | | | (_| |
 \__\__,_|___/_|\_\_.__/ \___/ \__,_|_|  \__,_|
`

// menuEntry is one command offered by the start menu.
type menuEntry struct {
	command string
	summary string
}

var menuEntries = []menuEntry{
	{"board", "open the board in the terminal"},
	{"web", "serve the drag-and-drop board over HTTP"},
	{"mcp", "expose the board as MCP tools on stdio"},
	{"list", "print every task"},
	{"status", "show column counts"},
	{"migrate", "preview tasks from the old to-do list"},
	{"init", "create .taskboard and its config"},
}

// MenuModel lets the user pick a subcommand when taskboard is started bare.
type MenuModel struct {
	entries  []menuEntry
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel() MenuModel {
	return MenuModel{entries: menuEntries}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	last := len(m.entries) - 1
	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, last)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = last
	case "enter":
		m.selected = m.entries[m.cursor].command
		return m, tea.Quit
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n\n")

	for i, e := range m.entries {
		line := fmt.Sprintf("%-8s %s", e.command, summaryStyle.Render(e.summary))
		if i == m.cursor {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n(j/k to move, enter to run, q to quit)\n")
	return s.String()
}

// Selected is the command chosen with enter, or "" if the menu was left.
func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu shows the start menu and returns the chosen command name.
func RunMenu() (string, error) {
	final, err := tea.NewProgram(NewMenuModel()).Run()
	if err != nil {
		return "", err
	}
	return final.(MenuModel).Selected(), nil
}
