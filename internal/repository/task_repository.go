package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notes/internal/model"
)

type TaskRepositoryInterface interface {
	Insert(ctx context.Context, draft model.Draft) (*model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	FindByID(ctx context.Context, id string) (*model.Task, error)
	UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Task, []string, error)
	DeleteByID(ctx context.Context, id string) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

type TaskRepository struct {
	db    *gorm.DB
	clock *monotonicClock
}

type Option func(*TaskRepository)

// WithClock replaces the wall clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(r *TaskRepository) {
		r.clock.now = now
	}
}

func NewTaskRepository(db *gorm.DB, opts ...Option) *TaskRepository {
	r := &TaskRepository{db: db, clock: &monotonicClock{now: time.Now}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert validates the draft, assigns id and createdAt and stores the task
func (r *TaskRepository) Insert(ctx context.Context, draft model.Draft) (*model.Task, error) {
	task := draft.Task()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := r.clock.Seed(func() (time.Time, error) { return r.latestCreatedAt(ctx) }); err != nil {
		return nil, storeErr("seed clock", err)
	}
	task.ID = uuid.New()
	task.CreatedAt = r.clock.Next()

	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, storeErr("insert task", err)
	}
	return &task, nil
}

// ListAll returns every task, most recently created first
func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, storeErr("list tasks", result.Error)
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", uid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storeErr("find task", result.Error)
	}
	return &task, nil
}

// UpdateByID applies the set fields of patch and re-validates the merged task.
// Only changed columns are written; id and createdAt are never touched. The
// returned names are the JSON names of the fields that changed.
func (r *TaskRepository) UpdateByID(ctx context.Context, id string, patch model.Patch) (*model.Task, []string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, ErrTaskNotFound
	}

	var (
		task    model.Task
		changed []string
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", uid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return storeErr("load task", err)
		}

		changed = patch.Apply(&task)
		if err := task.Validate(); err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}

		columns := make([]string, 0, len(changed))
		for _, field := range changed {
			columns = append(columns, patchColumns[field])
		}
		if err := tx.Model(&task).Select(columns).Updates(&task).Error; err != nil {
			return storeErr("update task", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &task, changed, nil
}

var patchColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"importance":  "importance",
	"status":      "status",
	"dueDate":     "due_date",
}

// DeleteByID removes a task permanently
func (r *TaskRepository) DeleteByID(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrTaskNotFound
	}

	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", uid)
	if result.Error != nil {
		return storeErr("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// latestCreatedAt returns the newest stored createdAt, or zero for an empty table.
func (r *TaskRepository) latestCreatedAt(ctx context.Context) (time.Time, error) {
	var latest model.Task
	err := r.db.WithContext(ctx).
		Select("created_at").
		Order("created_at DESC").
		Limit(1).
		Find(&latest).Error
	return latest.CreatedAt, err
}

// monotonicClock hands out strictly increasing timestamps at microsecond
// resolution, the finest precision postgres keeps. It is seeded once from the
// store so ordering also holds across restarts.
type monotonicClock struct {
	mu     sync.Mutex
	now    func() time.Time
	last   time.Time
	seeded bool
}

// Seed raises the floor to the value returned by load. It runs load until one
// call succeeds.
func (c *monotonicClock) Seed(load func() (time.Time, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seeded {
		return nil
	}
	latest, err := load()
	if err != nil {
		return err
	}
	if latest = latest.UTC(); latest.After(c.last) {
		c.last = latest
	}
	c.seeded = true
	return nil
}

func (c *monotonicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
