package domain

import (
	"context"
	"time"
)

// Task is a single to-do item owned by a user.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	IsDone      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskRepository defines the port for task persistence operations.
// All operations are scoped to the owning user; lookups for tasks the
// user does not own return (nil, nil).
type TaskRepository interface {
	// ListByUser returns the user's tasks, open tasks first, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Task, error)
	Get(ctx context.Context, id, userID int64) (*Task, error)
	Create(ctx context.Context, userID int64, title, description string) (*Task, error)
	Update(ctx context.Context, id, userID int64, title, description string, isDone bool) error
	Delete(ctx context.Context, id, userID int64) error
}
