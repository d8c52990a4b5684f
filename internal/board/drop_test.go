package board

import (
	"testing"

	"github.com/nick-dorsch/taskboard/pkg/models"
)

func str(s string) *string { return &s }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		dragged string
		target  *string
		want    Command
	}{
		{"long column prefix", "t1", str("column:doing"), Command{Kind: CommandSetStatus, TaskID: "t1", Status: models.TaskStatusDoing}},
		{"short column prefix", "t1", str("col:done"), Command{Kind: CommandSetStatus, TaskID: "t1", Status: models.TaskStatusDone}},
		{"back to todo", "t1", str("col:todo"), Command{Kind: CommandSetStatus, TaskID: "t1", Status: models.TaskStatusTodo}},
		{"no target", "t1", nil, Command{Kind: CommandNoop}},
		{"onto another task", "t1", str("t2"), Command{Kind: CommandNoop}},
		{"unknown column", "t1", str("col:archived"), Command{Kind: CommandNoop}},
		{"empty column", "t1", str("col:"), Command{Kind: CommandNoop}},
		{"empty target", "t1", str(""), Command{Kind: CommandNoop}},
		{"no dragged id", "", str("col:doing"), Command{Kind: CommandNoop}},
		{"case sensitive", "t1", str("COL:doing"), Command{Kind: CommandNoop}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.dragged, tt.target)
			if got != tt.want {
				t.Errorf("Resolve(%q, %v) = %+v, want %+v", tt.dragged, tt.target, got, tt.want)
			}
		})
	}
}

func TestColumnIDRoundTrip(t *testing.T) {
	for _, status := range models.AllStatuses() {
		id := ColumnID(status)
		got, ok := ParseColumnID(id)
		if !ok || got != status {
			t.Errorf("ParseColumnID(%q) = %q, %v", id, got, ok)
		}
	}
}

func TestCommandKindString(t *testing.T) {
	if CommandNoop.String() != "noop" || CommandSetStatus.String() != "set_status" {
		t.Errorf("unexpected kind names: %s, %s", CommandNoop, CommandSetStatus)
	}
	if !(Command{}).IsNoop() {
		t.Error("zero command should be a no-op")
	}
}
