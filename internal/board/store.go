// Package board holds the in-memory Kanban task collection, the drop
// resolution policy and the controller that persists every change.
package board

import (
	"strings"
	"time"

	"github.com/nick-dorsch/taskboard/internal/ids"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

// Store owns the canonical task sequence, newest first. Per-status views
// are filtered projections of it. Store is not safe for concurrent use;
// Controller serialises access.
type Store struct {
	tasks []models.Task
	ids   ids.Generator
	now   func() time.Time
}

func NewStore(gen ids.Generator, now func() time.Time) *Store {
	if gen == nil {
		gen = ids.UUID{}
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		tasks: []models.Task{},
		ids:   gen,
		now:   now,
	}
}

// Replace hydrates the store from a persisted snapshot.
func (s *Store) Replace(tasks []models.Task) {
	s.tasks = models.CloneTasks(tasks)
}

// Tasks returns a copy of the canonical sequence.
func (s *Store) Tasks() []models.Task {
	return models.CloneTasks(s.tasks)
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (models.Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add prepends a new todo task. A blank title is ignored and nil is
// returned with the unchanged snapshot.
func (s *Store) Add(title string) (*models.Task, []models.Task) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, s.Tasks()
	}

	t := models.Task{
		ID:        s.ids.Next(),
		Title:     title,
		Status:    models.TaskStatusTodo,
		CreatedAt: s.now().UnixMilli(),
	}
	s.tasks = append([]models.Task{t}, s.tasks...)

	created := t.Clone()
	return &created, s.Tasks()
}

// Remove drops the task with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) []models.Task {
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return s.Tasks()
}

// SetStatus changes only the status of the matching task. Unknown ids and
// invalid statuses are ignored. Every status may move to every other.
func (s *Store) SetStatus(id string, status models.TaskStatus) []models.Task {
	if !status.Valid() {
		return s.Tasks()
	}
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i].Status = status
	}
	return s.Tasks()
}

// SetTitle renames the matching task. A blank title discards the edit; the
// returned bool reports whether the edit was accepted.
func (s *Store) SetTitle(id, title string) ([]models.Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.Tasks(), false
	}
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i].Title = title
	}
	return s.Tasks(), true
}

// Toggle flips a task between done and todo. A doing task becomes done.
func (s *Store) Toggle(id string) []models.Task {
	if i := s.indexOf(id); i >= 0 {
		if s.tasks[i].Status == models.TaskStatusDone {
			s.tasks[i].Status = models.TaskStatusTodo
		} else {
			s.tasks[i].Status = models.TaskStatusDone
		}
	}
	return s.Tasks()
}

// ClearDone removes every done task.
func (s *Store) ClearDone() []models.Task {
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.Status != models.TaskStatusDone {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return s.Tasks()
}

// ViewByStatus returns the tasks with the given status in canonical order.
func (s *Store) ViewByStatus(status models.TaskStatus) []models.Task {
	return filterByStatus(s.tasks, status)
}

// Columns partitions the collection by status.
func (s *Store) Columns() map[models.TaskStatus][]models.Task {
	cols := make(map[models.TaskStatus][]models.Task, 3)
	for _, status := range models.AllStatuses() {
		cols[status] = filterByStatus(s.tasks, status)
	}
	return cols
}

func (s *Store) Counts() map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, 3)
	for _, status := range models.AllStatuses() {
		counts[status] = 0
	}
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

func filterByStatus(tasks []models.Task, status models.TaskStatus) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}
