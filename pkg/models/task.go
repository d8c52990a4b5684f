package models

import "strings"

type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

// AllStatuses returns the board columns in display order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusDoing, TaskStatusDone}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}

// ParseStatus normalises user input ("Doing", " done ") into a TaskStatus.
func ParseStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.Valid()
}

type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}

// Task is the current (v2) persisted task record.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	CreatedAt int64      `json:"createdAt"`
	Priority  *Priority  `json:"priority,omitempty"`
	Due       *string    `json:"due,omitempty"`
}

// PriorityLabel returns the priority for display, "normal" when unset.
func (t Task) PriorityLabel() string {
	if t.Priority == nil {
		return "normal"
	}
	return string(*t.Priority)
}

// DueLabel returns the due date for display, empty when unset.
func (t Task) DueLabel() string {
	if t.Due == nil {
		return ""
	}
	return strings.TrimSpace(*t.Due)
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	c := t
	if t.Priority != nil {
		p := *t.Priority
		c.Priority = &p
	}
	if t.Due != nil {
		d := *t.Due
		c.Due = &d
	}
	return c
}

// LegacyTask is the flat to-do record of the v1 schema. It is only ever read.
type LegacyTask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// CloneTasks deep-copies a task slice. A nil input yields an empty slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
