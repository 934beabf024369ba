package model

import "time"

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskInput carries caller-supplied fields for a new task. IsCompleted
// is accepted on the wire so the service can override whatever was sent.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

// TaskPatch is a partial update; nil fields are left as they are.
type TaskPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
}
