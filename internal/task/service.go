// Package task holds the domain rules sitting between the HTTP surface and
// the store: the fixed listing window, the forced-incomplete default on
// create, and the existence check on complete.
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/db"
	"github.com/taskdeck/taskdeck/internal/model"
)

// ErrTaskNotFound marks a completion request for an id that does not exist.
var ErrTaskNotFound = errors.New("task not found")

// DefaultListLimit caps the incomplete-task listing.
const DefaultListLimit = 5

type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

func (s *Service) IncompleteTasks(ctx context.Context) ([]model.Task, error) {
	return s.store.IncompleteTasks(ctx, DefaultListLimit)
}

// CreateTask stores a new task. Whatever the caller put in IsCompleted is
// discarded; every created task starts incomplete.
func (s *Service) CreateTask(ctx context.Context, input model.CreateTaskInput) (model.Task, error) {
	input.IsCompleted = false
	return s.store.CreateTask(ctx, input)
}

// CompleteTask flips is_completed to true and returns the task as it was
// before the update. The prior-snapshot return is deliberate wire
// compatibility; callers must not assume the result has IsCompleted set.
func (s *Service) CompleteTask(ctx context.Context, id int64) (model.Task, error) {
	found, ok, err := s.store.FindTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if !ok {
		return model.Task{}, fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}

	completed := true
	if _, err := s.store.UpdateTask(ctx, id, model.TaskPatch{IsCompleted: &completed}); err != nil {
		return model.Task{}, err
	}

	return found, nil
}

func (s *Service) FindTask(ctx context.Context, id int64) (model.Task, bool, error) {
	return s.store.FindTask(ctx, id)
}
