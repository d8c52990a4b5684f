package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskboard/internal/board"
	"github.com/nick-dorsch/taskboard/internal/ui/components"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

const (
	defaultWidth = 96
	logHeight    = 4
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeEdit
)

// BoardModel is the interactive three-column board.
type BoardModel struct {
	ctx  context.Context
	ctrl *board.Controller

	statuses []models.TaskStatus
	column   int
	cursors  []int

	mode   inputMode
	editID string
	input  textinput.Model

	activity *components.ActivityLog
	width    int
	quitting bool
}

func NewBoardModel(ctx context.Context, ctrl *board.Controller) BoardModel {
	input := textinput.New()
	input.CharLimit = 200

	statuses := models.AllStatuses()
	m := BoardModel{
		ctx:      ctx,
		ctrl:     ctrl,
		statuses: statuses,
		cursors:  make([]int, len(statuses)),
		input:    input,
		activity: components.NewActivityLog(defaultWidth, logHeight),
		width:    defaultWidth,
	}
	m.activity.SetSize(defaultWidth, logHeight)
	return m
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.activity.SetSize(msg.Width, logHeight)
		return m, nil

	case tea.MouseMsg:
		return m, m.activity.Update(msg)

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m BoardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.column > 0 {
			m.column--
		}

	case "right", "l":
		if m.column < len(m.statuses)-1 {
			m.column++
		}

	case "up", "k":
		if m.cursors[m.column] > 0 {
			m.cursors[m.column]--
		}

	case "down", "j":
		if m.cursors[m.column] < len(m.columnTasks(m.column))-1 {
			m.cursors[m.column]++
		}

	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "New task"
		m.input.SetValue("")
		return m, m.input.Focus()

	case "e":
		if task, ok := m.selected(); ok {
			m.mode = modeEdit
			m.editID = task.ID
			m.input.Placeholder = "Title"
			m.input.SetValue(task.Title)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}

	case "d", "x":
		if task, ok := m.selected(); ok {
			_, _, err := m.ctrl.Remove(m.ctx, task.ID)
			m.report(fmt.Sprintf("Removed %q", task.Title), err)
		}

	case "H", "<":
		m.move(-1)

	case "L", ">":
		m.move(1)

	case " ":
		if task, ok := m.selected(); ok {
			_, err := m.ctrl.Toggle(m.ctx, task.ID)
			m.report(fmt.Sprintf("Toggled %q", task.Title), err)
		}

	case "c":
		_, err := m.ctrl.ClearDone(m.ctx)
		m.report("Cleared done tasks", err)

	case "pgup", "pgdown":
		return m, m.activity.Update(msg)

	case "ctrl+l":
		m.activity.Reset()
	}

	m.clamp()
	return m, nil
}

func (m BoardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		switch m.mode {
		case modeAdd:
			task, _, err := m.ctrl.Add(m.ctx, value)
			if task != nil {
				m.column = 0
				m.cursors[0] = 0
				m.report(fmt.Sprintf("Added %q", task.Title), err)
			}
		case modeEdit:
			if strings.TrimSpace(value) != "" {
				_, err := m.ctrl.SetTitle(m.ctx, m.editID, value)
				m.report(fmt.Sprintf("Renamed to %q", strings.TrimSpace(value)), err)
			}
		}
		m.mode = modeBrowse
		m.editID = ""
		m.input.Blur()
		m.clamp()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// move drops the selected card on the neighbouring column.
func (m *BoardModel) move(delta int) {
	task, ok := m.selected()
	if !ok {
		return
	}
	next := m.column + delta
	if next < 0 || next >= len(m.statuses) {
		return
	}

	target := board.ColumnID(m.statuses[next])
	cmd, _, err := m.ctrl.Drop(m.ctx, task.ID, &target)
	if cmd.IsNoop() {
		return
	}
	m.report(fmt.Sprintf("Moved %q to %s", task.Title, board.ColumnTitle(cmd.Status)), err)

	// Follow the card.
	m.column = next
	for i, t := range m.columnTasks(next) {
		if t.ID == task.ID {
			m.cursors[next] = i
			break
		}
	}
}

func (m *BoardModel) report(msg string, err error) {
	if err != nil {
		m.activity.AddError(fmt.Sprintf("%s, not saved: %v", msg, err))
		return
	}
	m.activity.Add(msg)
}

func (m BoardModel) columnTasks(i int) []models.Task {
	return m.ctrl.View(m.statuses[i])
}

func (m BoardModel) selected() (models.Task, bool) {
	tasks := m.columnTasks(m.column)
	cur := m.cursors[m.column]
	if cur < 0 || cur >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[cur], true
}

func (m *BoardModel) clamp() {
	for i := range m.statuses {
		n := len(m.columnTasks(i))
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	colWidth := m.width / len(m.statuses)
	if colWidth < 20 {
		colWidth = 20
	}

	cols := make([]string, 0, len(m.statuses))
	for i, status := range m.statuses {
		col := components.NewColumn(board.ColumnTitle(status), colWidth)
		col.Tasks = m.columnTasks(i)
		col.Cursor = m.cursors[i]
		col.Focused = i == m.column
		cols = append(cols, col.View())
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Taskboard"))
	s.WriteString("\n\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	s.WriteString("\n")

	switch m.mode {
	case modeAdd:
		s.WriteString(promptStyle.Render("Add: ") + m.input.View() + "\n")
	case modeEdit:
		s.WriteString(promptStyle.Render("Edit: ") + m.input.View() + "\n")
	default:
		s.WriteString(helpStyle.Render("h/l column • j/k card • a add • e edit • d delete • H/L move • space toggle • c clear done • pgup/pgdn log • ctrl+l clear log • q quit"))
		s.WriteString("\n")
	}

	if m.activity.Len() > 0 {
		s.WriteString(m.activity.View())
		s.WriteString("\n")
	}
	return s.String()
}

// RunBoard runs the board until the user quits.
func RunBoard(ctx context.Context, ctrl *board.Controller) error {
	p := tea.NewProgram(NewBoardModel(ctx, ctrl), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
