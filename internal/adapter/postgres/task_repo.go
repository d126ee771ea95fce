package postgres

import (
	"context"
	"database/sql"

	"mytasker/internal/domain"
)

// TaskRepo implements domain.TaskRepository on PostgreSQL.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo wraps a DB as a TaskRepository.
func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// ListByUser returns the user's tasks, open tasks first, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, user_id, title, description, is_done, created_at, updated_at
		 FROM tasks WHERE user_id = $1
		 ORDER BY is_done ASC, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description,
			&t.IsDone, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get retrieves one task scoped to its owner.
func (r *TaskRepo) Get(ctx context.Context, id, userID int64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, is_done, created_at, updated_at
		 FROM tasks WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsDone, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a task for the user.
func (r *TaskRepo) Create(ctx context.Context, userID int64, title, description string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, title, description, is_done, created_at, updated_at`,
		userID, title, description).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsDone, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update changes a task's fields, scoped to its owner.
func (r *TaskRepo) Update(ctx context.Context, id, userID int64, title, description string, isDone bool) error {
	_, err := r.db.sql.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, is_done = $3, updated_at = NOW()
		 WHERE id = $4 AND user_id = $5`,
		title, description, isDone, id, userID)
	return err
}

// Delete removes a task, scoped to its owner.
func (r *TaskRepo) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	return err
}
