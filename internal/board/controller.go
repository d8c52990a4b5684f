package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nick-dorsch/taskboard/internal/ids"
	"github.com/nick-dorsch/taskboard/internal/logging"
	"github.com/nick-dorsch/taskboard/internal/storage"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

var ErrInvalidStatus = errors.New("invalid status")

// Column is one status group of the board.
type Column struct {
	ID     string            `json:"id"`
	Status models.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Tasks  []models.Task     `json:"tasks"`
}

// Snapshot is the full board: the three columns and their counts.
type Snapshot struct {
	Columns []Column                  `json:"columns"`
	Counts  map[models.TaskStatus]int `json:"counts"`
	Total   int                       `json:"total"`
}

// ColumnTitle returns the display name of a status column.
func ColumnTitle(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusTodo:
		return "To do"
	case models.TaskStatusDoing:
		return "In progress"
	case models.TaskStatusDone:
		return "Done"
	}
	return string(status)
}

// Controller wires the Store to the storage Gateway. Every mutating command
// is applied in memory and then written through with a full Save before the
// call returns. A failed Save is returned to the caller but the in-memory
// state stays authoritative.
type Controller struct {
	mu      sync.Mutex
	store   *Store
	gateway storage.Gateway
	logger  *log.Logger
}

type options struct {
	ids    ids.Generator
	now    func() time.Time
	logger *log.Logger
}

type Option func(*options)

func WithIDGenerator(gen ids.Generator) Option {
	return func(o *options) { o.ids = gen }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func NewController(gateway storage.Gateway, opts ...Option) *Controller {
	if gateway == nil {
		panic("board.NewController: gateway is nil")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	return &Controller{
		store:   NewStore(o.ids, o.now),
		gateway: gateway,
		logger:  o.logger,
	}
}

// Load hydrates the store from persistence and returns the snapshot.
func (c *Controller) Load(ctx context.Context) []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Replace(c.gateway.Load(ctx))
	c.logger.Debug("board loaded", "tasks", c.store.Len())
	return c.store.Tasks()
}

func (c *Controller) persist(ctx context.Context, op string) error {
	if err := c.gateway.Save(ctx, c.store.tasks); err != nil {
		c.logger.Warn("failed to persist board", "op", op, "err", err)
		return fmt.Errorf("failed to persist %s: %w", op, err)
	}
	return nil
}

// Add creates a task. A blank title returns a nil task and writes nothing.
func (c *Controller) Add(ctx context.Context, title string) (*models.Task, []models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, tasks := c.store.Add(title)
	if task == nil {
		return nil, tasks, nil
	}
	c.logger.Debug("task added", "id", task.ID)
	return task, tasks, c.persist(ctx, "add")
}

// Remove deletes a task. The bool reports whether the id was on the board
// when the command ran.
func (c *Controller) Remove(ctx context.Context, id string) (bool, []models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.store.indexOf(id) >= 0
	tasks := c.store.Remove(id)
	return removed, tasks, c.persist(ctx, "remove")
}

// SetStatus moves a task to another column. An invalid status is rejected
// with ErrInvalidStatus before anything is written.
func (c *Controller) SetStatus(ctx context.Context, id string, status models.TaskStatus) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !status.Valid() {
		return c.store.Tasks(), fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	tasks := c.store.SetStatus(id, status)
	return tasks, c.persist(ctx, "set status")
}

// SetTitle renames a task. A blank title is discarded without a write.
func (c *Controller) SetTitle(ctx context.Context, id, title string) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks, ok := c.store.SetTitle(id, title)
	if !ok {
		return tasks, nil
	}
	return tasks, c.persist(ctx, "set title")
}

func (c *Controller) Toggle(ctx context.Context, id string) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := c.store.Toggle(id)
	return tasks, c.persist(ctx, "toggle")
}

func (c *Controller) ClearDone(ctx context.Context) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := c.store.ClearDone()
	return tasks, c.persist(ctx, "clear done")
}

// Drop resolves a drag end and applies the resulting command.
func (c *Controller) Drop(ctx context.Context, draggedID string, target *string) (Command, []models.Task, error) {
	cmd := Resolve(draggedID, target)
	tasks, err := c.Apply(ctx, cmd)
	return cmd, tasks, err
}

// Apply executes a resolved command. A no-op writes nothing.
func (c *Controller) Apply(ctx context.Context, cmd Command) ([]models.Task, error) {
	switch cmd.Kind {
	case CommandSetStatus:
		return c.SetStatus(ctx, cmd.TaskID, cmd.Status)
	default:
		return c.Tasks(), nil
	}
}

func (c *Controller) Tasks() []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Tasks()
}

func (c *Controller) Get(id string) (models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

func (c *Controller) View(status models.TaskStatus) []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ViewByStatus(status)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	cols := c.store.Columns()
	snap := Snapshot{
		Counts: c.store.Counts(),
		Total:  c.store.Len(),
	}
	for _, status := range models.AllStatuses() {
		snap.Columns = append(snap.Columns, Column{
			ID:     ColumnID(status),
			Status: status,
			Title:  ColumnTitle(status),
			Tasks:  cols[status],
		})
	}
	return snap
}
