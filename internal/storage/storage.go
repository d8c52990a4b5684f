// Package storage is the only reader and writer of the persisted task
// collection. It owns the v1 to v2 schema migration.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nick-dorsch/taskboard/internal/kv"
	"github.com/nick-dorsch/taskboard/internal/logging"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

const (
	DefaultCurrentKey = "tasks_v2"
	DefaultLegacyKey  = "tasks_v1"
)

// Gateway loads and saves the task collection.
type Gateway interface {
	Load(ctx context.Context) []models.Task
	Migrate(ctx context.Context) []models.Task
	Save(ctx context.Context, tasks []models.Task) error
}

type Storage struct {
	kv         kv.Store
	currentKey string
	legacyKey  string
	now        func() time.Time
	logger     *log.Logger
	schemas    *schemas
}

type Option func(*Storage)

// WithKeys overrides the current and legacy key names. Empty values keep
// the defaults.
func WithKeys(current, legacy string) Option {
	return func(s *Storage) {
		if current != "" {
			s.currentKey = current
		}
		if legacy != "" {
			s.legacyKey = legacy
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store kv.Store, opts ...Option) (*Storage, error) {
	if store == nil {
		return nil, fmt.Errorf("storage.New: kv store is nil")
	}
	sc, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	s := &Storage{
		kv:         store,
		currentKey: DefaultCurrentKey,
		legacyKey:  DefaultLegacyKey,
		now:        time.Now,
		logger:     logging.Discard(),
		schemas:    sc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Storage) CurrentKey() string { return s.currentKey }
func (s *Storage) LegacyKey() string  { return s.legacyKey }

// Load returns the current collection. A missing, unparsable or
// schema-mismatched current key is treated as absent and the legacy key is
// migrated instead. A non-empty migration result is written back under the
// current key. Load never fails.
func (s *Storage) Load(ctx context.Context) []models.Task {
	if tasks, ok := s.loadCurrent(ctx); ok {
		return tasks
	}

	migrated := s.Migrate(ctx)
	if len(migrated) > 0 {
		if err := s.Save(ctx, migrated); err != nil {
			s.logger.Warn("failed to persist migrated tasks", "key", s.currentKey, "err", err)
		} else {
			s.logger.Info("migrated legacy tasks", "from", s.legacyKey, "to", s.currentKey, "count", len(migrated))
		}
	}
	return migrated
}

func (s *Storage) loadCurrent(ctx context.Context) ([]models.Task, bool) {
	raw, ok, err := s.kv.Get(ctx, s.currentKey)
	if err != nil {
		s.logger.Warn("failed to read tasks", "key", s.currentKey, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var tasks []models.Task
	if err := decode(raw, s.schemas.current, &tasks); err != nil {
		s.logger.Warn("ignoring malformed tasks", "key", s.currentKey, "err", err)
		return nil, false
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, true
}

// Migrate converts the legacy flat to-do list into current tasks. Every
// migrated task gets the same createdAt (now) because v1 carries no
// timestamps. The legacy key is left untouched.
func (s *Storage) Migrate(ctx context.Context) []models.Task {
	raw, ok, err := s.kv.Get(ctx, s.legacyKey)
	if err != nil {
		s.logger.Warn("failed to read legacy tasks", "key", s.legacyKey, "err", err)
		return []models.Task{}
	}
	if !ok {
		return []models.Task{}
	}

	var legacy []models.LegacyTask
	if err := decode(raw, s.schemas.legacy, &legacy); err != nil {
		s.logger.Warn("ignoring malformed legacy tasks", "key", s.legacyKey, "err", err)
		return []models.Task{}
	}

	createdAt := s.now().UnixMilli()
	tasks := make([]models.Task, 0, len(legacy))
	for _, l := range legacy {
		status := models.TaskStatusTodo
		if l.Done {
			status = models.TaskStatusDone
		}
		tasks = append(tasks, models.Task{
			ID:        l.ID,
			Title:     l.Title,
			Status:    status,
			CreatedAt: createdAt,
		})
	}
	return tasks
}

// Save overwrites the current key with the full collection.
func (s *Storage) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, s.currentKey, string(data)); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}
