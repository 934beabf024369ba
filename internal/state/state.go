// Package state holds the client-side task cache: an ordered list, one
// loading flag per operation, and the last error. The list is a cache of the
// server's incomplete view, never a source of truth; every mutation ends with
// a full re-fetch so the cache converges on the store regardless of whether
// the optimistic update was right.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/taskdeck/taskdeck/internal/bus"
	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/model"
)

// ErrBusy is returned when an operation of the same type is still in flight.
// Rapid repeated user actions degrade to a no-op instead of stacking requests.
var ErrBusy = errors.New("operation already in flight")

type Loading struct {
	Tasks    bool
	Create   bool
	Complete bool
}

type Store struct {
	client client.Client
	events *bus.Bus

	mu      sync.Mutex
	tasks   []model.Task
	loading Loading
	lastErr string

	onChange func()
}

func New(c client.Client, events *bus.Bus) *Store {
	return &Store{client: c, events: events}
}

// OnChange registers a single callback fired after every state transition.
// The presentation layer uses it to schedule a repaint. Must be set before
// the store is shared across goroutines.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// Snapshot hands out copies; callers never see the live slice.
func (s *Store) Snapshot() ([]model.Task, Loading, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]model.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks, s.loading, s.lastErr
}

func (s *Store) LoadTasks(ctx context.Context) error {
	s.mu.Lock()
	if s.loading.Tasks {
		s.mu.Unlock()
		return ErrBusy
	}
	s.loading.Tasks = true
	s.lastErr = ""
	s.mu.Unlock()
	s.changed()

	return s.finishLoad(ctx)
}

// AddTask creates a task, optimistically prepends it, then re-fetches the
// list whether or not creation succeeded. The error is returned after
// reconciliation so the caller can surface it.
func (s *Store) AddTask(ctx context.Context, input model.CreateTaskInput) (model.Task, error) {
	s.mu.Lock()
	if s.loading.Create {
		s.mu.Unlock()
		return model.Task{}, ErrBusy
	}
	s.loading.Create = true
	s.lastErr = ""
	s.mu.Unlock()
	s.changed()

	created, err := s.client.CreateTask(ctx, input)
	if err == nil {
		s.mu.Lock()
		s.tasks = append([]model.Task{created}, s.tasks...)
		s.mu.Unlock()
		s.changed()
	} else {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
	}

	s.refetch(ctx)

	if err == nil && s.events != nil {
		s.events.Publish(bus.Event{Type: bus.TaskAdded, Task: created})
	}

	s.mu.Lock()
	s.loading.Create = false
	s.mu.Unlock()
	s.changed()

	return created, err
}

// CompleteTask optimistically drops the task from the incomplete view,
// rolls back on failure, and re-fetches either way.
func (s *Store) CompleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.loading.Complete {
		s.mu.Unlock()
		return ErrBusy
	}
	s.loading.Complete = true
	s.lastErr = ""

	previous := make([]model.Task, len(s.tasks))
	copy(previous, s.tasks)

	var completed model.Task
	remaining := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID == id {
			completed = t
			continue
		}
		remaining = append(remaining, t)
	}
	s.tasks = remaining
	s.mu.Unlock()
	s.changed()

	_, err := s.client.CompleteTask(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.tasks = previous
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.changed()
	}

	s.refetch(ctx)

	if err == nil && s.events != nil {
		s.events.Publish(bus.Event{Type: bus.TaskCompleted, Task: completed})
	}

	s.mu.Lock()
	s.loading.Complete = false
	s.mu.Unlock()
	s.changed()

	return err
}

// refetch bypasses the busy guard: the post-mutation reload must run even
// while its own loading flag is being toggled.
func (s *Store) refetch(ctx context.Context) {
	s.mu.Lock()
	s.loading.Tasks = true
	s.mu.Unlock()
	s.changed()

	_ = s.finishLoad(ctx)
}

func (s *Store) finishLoad(ctx context.Context) error {
	tasks, err := s.client.GetTasks(ctx)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.tasks = tasks
		s.lastErr = ""
	}
	s.loading.Tasks = false
	s.mu.Unlock()
	s.changed()

	return err
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
