package db

import (
	"context"
	"database/sql"
	"errors"

	sqlc "github.com/taskdeck/taskdeck/internal/db/sqlc"
	"github.com/taskdeck/taskdeck/internal/model"
)

// Store is the persistence layer for tasks. It performs no validation;
// callers get exactly what the table holds.
type Store struct {
	DB      *sql.DB
	Queries *sqlc.Queries
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: sqlc.New(db)}
}

func (s *Store) AllTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.Queries.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return mapTasks(rows), nil
}

// FindTask reports the task and whether the id exists.
func (s *Store) FindTask(ctx context.Context, id int64) (model.Task, bool, error) {
	row, err := s.Queries.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, false, nil
		}
		return model.Task{}, false, err
	}
	return mapTask(row), true, nil
}

func (s *Store) CreateTask(ctx context.Context, input model.CreateTaskInput) (model.Task, error) {
	created, err := s.Queries.CreateTask(ctx, sqlc.CreateTaskParams{
		Title:       input.Title,
		Description: input.Description,
		IsCompleted: input.IsCompleted,
	})
	if err != nil {
		return model.Task{}, err
	}
	return mapTask(created), nil
}

// UpdateTask applies a partial patch and reports whether a row changed.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (bool, error) {
	var title sql.NullString
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}

	var description sql.NullString
	if patch.Description != nil {
		description = sql.NullString{String: *patch.Description, Valid: true}
	}

	var isCompleted sql.NullBool
	if patch.IsCompleted != nil {
		isCompleted = sql.NullBool{Bool: *patch.IsCompleted, Valid: true}
	}

	affected, err := s.Queries.UpdateTask(ctx, sqlc.UpdateTaskParams{
		Title:       title,
		Description: description,
		IsCompleted: isCompleted,
		ID:          id,
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) (bool, error) {
	affected, err := s.Queries.DeleteTask(ctx, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IncompleteTasks lists tasks whose is_completed flag is false, newest first,
// capped at limit.
func (s *Store) IncompleteTasks(ctx context.Context, limit int64) ([]model.Task, error) {
	rows, err := s.Queries.ListIncompleteTasks(ctx, limit)
	if err != nil {
		return nil, err
	}
	return mapTasks(rows), nil
}

func mapTask(task sqlc.Task) model.Task {
	return model.Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func mapTasks(rows []sqlc.Task) []model.Task {
	result := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapTask(row))
	}
	return result
}
