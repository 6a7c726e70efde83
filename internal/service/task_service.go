package service

import (
	"context"
	"log/slog"
	"time"

	"notes/internal/events"
	"notes/internal/model"
	"notes/internal/report"
	"notes/internal/repository"
)

type TaskServiceInterface interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, draft model.Draft) (*model.Task, error)
	Update(ctx context.Context, id string, patch model.Patch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	Report(ctx context.Context) (report.Stats, error)
}

var _ TaskServiceInterface = (*TaskService)(nil)

type TaskService struct {
	repo      repository.TaskRepositoryInterface
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

func NewTaskService(repo repository.TaskRepositoryInterface, publisher events.Publisher, log *slog.Logger) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the time source used for reports and event stamps.
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.ListAll(ctx)
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, draft model.Draft) (*model.Task, error) {
	task, err := s.repo.Insert(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:   events.TaskCreated,
		TaskID: task.ID.String(),
		Task:   task,
	})
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id string, patch model.Patch) (*model.Task, error) {
	updated, changed, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.publish(ctx, events.Event{
			Type:    events.TaskUpdated,
			TaskID:  updated.ID.String(),
			Changed: changed,
			Task:    updated,
		})
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:   events.TaskDeleted,
		TaskID: id,
	})
	return nil
}

// Report aggregates the full task list as of the service clock.
func (s *TaskService) Report(ctx context.Context) (report.Stats, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		return report.Stats{}, err
	}
	return report.ComputeStats(tasks, s.now()), nil
}

// publish never fails the calling operation; the write already happened.
func (s *TaskService) publish(ctx context.Context, event events.Event) {
	event.At = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish task event",
			"type", event.Type,
			"task_id", event.TaskID,
			"error", err,
		)
		return
	}
	s.log.Debug("task event published", "type", event.Type, "task_id", event.TaskID)
}
