package memory

import (
	"context"
	"sort"

	"mytasker/internal/domain"
)

// TaskRepo implements domain.TaskRepository on a DB.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo wraps a DB as a TaskRepository.
func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

// ListByUser returns the user's tasks, open tasks first, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.Task
	for _, t := range r.db.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDone != out[j].IsDone {
			return !out[i].IsDone
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get retrieves one task scoped to its owner.
func (r *TaskRepo) Get(ctx context.Context, id, userID int64) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tasks {
		if t.ID == id && t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

// Create inserts a task for the user.
func (r *TaskRepo) Create(ctx context.Context, userID int64, title, description string) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.taskIDCounter++
	now := r.db.now()
	t := &domain.Task{
		ID:          r.db.taskIDCounter,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.db.tasks = append(r.db.tasks, t)
	cp := *t
	return &cp, nil
}

// Update changes a task's fields, scoped to its owner.
func (r *TaskRepo) Update(ctx context.Context, id, userID int64, title, description string, isDone bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tasks {
		if t.ID == id && t.UserID == userID {
			t.Title = title
			t.Description = description
			t.IsDone = isDone
			t.UpdatedAt = r.db.now()
			break
		}
	}
	return nil
}

// Delete removes a task, scoped to its owner.
func (r *TaskRepo) Delete(ctx context.Context, id, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, t := range r.db.tasks {
		if t.ID == id && t.UserID == userID {
			r.db.tasks = append(r.db.tasks[:i], r.db.tasks[i+1:]...)
			break
		}
	}
	return nil
}
