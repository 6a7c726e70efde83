package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"notes/internal/model"
	"notes/internal/report"
)

// ErrIncompleteDraft is returned before any request when a required field is blank.
var ErrIncompleteDraft = errors.New("title, description and due date are required")

// API is the subset of Client a Session needs.
type API interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, draft model.Draft) (*model.Task, error)
	Update(ctx context.Context, id string, patch model.Patch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

var _ API = (*Client)(nil)

// State is an immutable snapshot of what the frontend shows.
type State struct {
	Tasks     []model.Task
	Stats     report.Stats
	FetchedAt time.Time
}

// Session keeps the last successfully fetched State.
//
// Client state is only as fresh as its last full list fetch: every mutation
// is followed by a complete re-fetch and the local list is never patched.
// A failed call leaves the previous State in place and is not retried.
type Session struct {
	api API
	now func() time.Time

	mu    sync.Mutex
	state State
}

func NewSession(api API) *Session {
	return &Session{api: api, now: time.Now}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) Create(ctx context.Context, draft model.Draft) (State, error) {
	if err := CheckDraft(draft); err != nil {
		return s.State(), err
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	return s.mutate(ctx, "create", func() error {
		_, err := s.api.Create(ctx, draft)
		return err
	})
}

func (s *Session) Update(ctx context.Context, id string, patch model.Patch) (State, error) {
	return s.mutate(ctx, "update", func() error {
		_, err := s.api.Update(ctx, id, patch)
		return err
	})
}

func (s *Session) Delete(ctx context.Context, id string) (State, error) {
	return s.mutate(ctx, "delete", func() error {
		return s.api.Delete(ctx, id)
	})
}

func (s *Session) mutate(ctx context.Context, op string, call func() error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := call(); err != nil {
		return s.state, fmt.Errorf("%s task: %w", op, err)
	}
	state, err := s.refreshLocked(ctx)
	if err != nil {
		return state, fmt.Errorf("refresh after %s: %w", op, err)
	}
	return state, nil
}

func (s *Session) refreshLocked(ctx context.Context) (State, error) {
	tasks, err := s.api.List(ctx)
	if err != nil {
		return s.state, err
	}
	now := s.now()
	s.state = State{
		Tasks:     tasks,
		Stats:     report.ComputeStats(tasks, now),
		FetchedAt: now,
	}
	return s.state, nil
}

// CheckDraft applies the form rules of the frontends: title, description and
// due date must be non-blank after trimming.
func CheckDraft(d model.Draft) error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" || d.DueDate.IsZero() {
		return ErrIncompleteDraft
	}
	return nil
}
