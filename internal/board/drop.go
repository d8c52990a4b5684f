package board

import (
	"strings"

	"github.com/nick-dorsch/taskboard/pkg/models"
)

// Column drop targets are "col:<status>". The long "column:" form is also
// accepted.
const (
	ColumnPrefix     = "col:"
	longColumnPrefix = "column:"
)

type CommandKind int

const (
	CommandNoop CommandKind = iota
	CommandSetStatus
)

func (k CommandKind) String() string {
	switch k {
	case CommandSetStatus:
		return "set_status"
	default:
		return "noop"
	}
}

// Command is the outcome of resolving a drag gesture.
type Command struct {
	Kind   CommandKind       `json:"-"`
	TaskID string            `json:"task_id,omitempty"`
	Status models.TaskStatus `json:"status,omitempty"`
}

func (c Command) IsNoop() bool {
	return c.Kind == CommandNoop
}

// ColumnID returns the drop target id of a status column.
func ColumnID(status models.TaskStatus) string {
	return ColumnPrefix + string(status)
}

// ParseColumnID extracts the status from a column drop target.
func ParseColumnID(target string) (models.TaskStatus, bool) {
	var rest string
	switch {
	case strings.HasPrefix(target, ColumnPrefix):
		rest = strings.TrimPrefix(target, ColumnPrefix)
	case strings.HasPrefix(target, longColumnPrefix):
		rest = strings.TrimPrefix(target, longColumnPrefix)
	default:
		return "", false
	}
	status := models.TaskStatus(rest)
	return status, status.Valid()
}

// Resolve turns a drag end into a command. A drag released outside any
// target (nil), over another card, or over an unknown column is a no-op.
// Reordering within a column is never resolved.
func Resolve(draggedID string, target *string) Command {
	if draggedID == "" || target == nil {
		return Command{Kind: CommandNoop}
	}
	status, ok := ParseColumnID(*target)
	if !ok {
		return Command{Kind: CommandNoop}
	}
	return Command{Kind: CommandSetStatus, TaskID: draggedID, Status: status}
}
