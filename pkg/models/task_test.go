package models

import "testing"

func TestParseStatus(t *testing.T) {
	cases := map[string]struct {
		want TaskStatus
		ok   bool
	}{
		"todo":    {TaskStatusTodo, true},
		" Doing ": {TaskStatusDoing, true},
		"DONE":    {TaskStatusDone, true},
		"blocked": {"blocked", false},
		"":        {"", false},
	}
	for in, tc := range cases {
		got, ok := ParseStatus(in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	task := Task{ID: "1", Title: "a", Status: TaskStatusTodo}
	if task.PriorityLabel() != "normal" {
		t.Errorf("expected normal, got %s", task.PriorityLabel())
	}
	high := PriorityHigh
	task.Priority = &high
	if task.PriorityLabel() != "high" {
		t.Errorf("expected high, got %s", task.PriorityLabel())
	}
}

func TestDueLabel(t *testing.T) {
	task := Task{ID: "1", Title: "a", Status: TaskStatusTodo}
	if task.DueLabel() != "" {
		t.Errorf("expected empty due label, got %q", task.DueLabel())
	}
	due := " 2025-04-01 "
	task.Due = &due
	if task.DueLabel() != "2025-04-01" {
		t.Errorf("expected trimmed due date, got %q", task.DueLabel())
	}
}

func TestCloneDoesNotSharePointers(t *testing.T) {
	p := PriorityLow
	due := "2025-01-01"
	orig := Task{ID: "1", Title: "a", Status: TaskStatusTodo, Priority: &p, Due: &due}

	c := orig.Clone()
	*c.Priority = PriorityHigh
	*c.Due = "2030-12-31"

	if *orig.Priority != PriorityLow {
		t.Errorf("clone mutated original priority: %s", *orig.Priority)
	}
	if *orig.Due != "2025-01-01" {
		t.Errorf("clone mutated original due: %s", *orig.Due)
	}
}

func TestCloneTasksNil(t *testing.T) {
	out := CloneTasks(nil)
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", out)
	}
}
