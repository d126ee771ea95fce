package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"mytasker/internal/audit"
	"mytasker/internal/domain"
)

// Task validation messages.
const (
	MsgTaskTitleRequired = "Task title is required"
	MsgTaskTitleTooLong  = "Task title must be 200 characters or less"
	MsgTaskNotFound      = "Task not found"
)

// TaskService manages a user's to-do items. Every operation is scoped to
// the acting user; a task owned by someone else behaves as if it did not
// exist.
type TaskService struct {
	tasks  domain.TaskRepository
	audit  audit.Sink
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks domain.TaskRepository, sink audit.Sink, logger *slog.Logger) *TaskService {
	return &TaskService{tasks: tasks, audit: sink, logger: logger}
}

// List returns the user's tasks, open tasks first, newest first.
func (s *TaskService) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Get returns one task, scoped to its owner.
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*domain.Task, Result) {
	t, err := s.tasks.Get(ctx, taskID, userID)
	if err != nil {
		s.logger.Error("task lookup failed", "user_id", userID, "task_id", taskID, "error", err)
		return nil, failure(MsgStoreError)
	}
	if t == nil {
		return nil, failure(MsgTaskNotFound)
	}
	return t, success()
}

// Create adds a task for the user.
func (s *TaskService) Create(ctx context.Context, userID int64, title, description string) (*domain.Task, Result) {
	title = strings.TrimSpace(title)
	if msg := validateTitle(title); msg != "" {
		return nil, failure(msg)
	}
	t, err := s.tasks.Create(ctx, userID, title, strings.TrimSpace(description))
	if err != nil {
		s.logger.Error("task create failed", "user_id", userID, "error", err)
		return nil, failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "create_task",
		Resource:   "task",
		ResourceID: strconv.FormatInt(t.ID, 10),
		Details:    "Task created: " + t.Title,
	})
	return t, success()
}

// Update changes a task's title, description, and done flag.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, title, description string, isDone bool) Result {
	title = strings.TrimSpace(title)
	if msg := validateTitle(title); msg != "" {
		return failure(msg)
	}
	t, err := s.tasks.Get(ctx, taskID, userID)
	if err != nil {
		s.logger.Error("task lookup failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	if t == nil {
		return failure(MsgTaskNotFound)
	}
	if err := s.tasks.Update(ctx, taskID, userID, title, strings.TrimSpace(description), isDone); err != nil {
		s.logger.Error("task update failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "update_task",
		Resource:   "task",
		ResourceID: strconv.FormatInt(taskID, 10),
		Details:    "Task updated: " + title,
	})
	return success()
}

// Toggle flips a task's done flag.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID int64) Result {
	t, err := s.tasks.Get(ctx, taskID, userID)
	if err != nil {
		s.logger.Error("task lookup failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	if t == nil {
		return failure(MsgTaskNotFound)
	}
	if err := s.tasks.Update(ctx, taskID, userID, t.Title, t.Description, !t.IsDone); err != nil {
		s.logger.Error("task toggle failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	action := "complete_task"
	if t.IsDone {
		action = "reopen_task"
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     action,
		Resource:   "task",
		ResourceID: strconv.FormatInt(taskID, 10),
	})
	return success()
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) Result {
	t, err := s.tasks.Get(ctx, taskID, userID)
	if err != nil {
		s.logger.Error("task lookup failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	if t == nil {
		return failure(MsgTaskNotFound)
	}
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		s.logger.Error("task delete failed", "user_id", userID, "task_id", taskID, "error", err)
		return failure(MsgStoreError)
	}
	s.audit.Record(ctx, audit.Event{
		UserID:     userID,
		Action:     "delete_task",
		Resource:   "task",
		ResourceID: strconv.FormatInt(taskID, 10),
		Details:    "Task deleted: " + t.Title,
	})
	return success()
}

func validateTitle(title string) string {
	if title == "" {
		return MsgTaskTitleRequired
	}
	if len(title) > 200 {
		return MsgTaskTitleTooLong
	}
	return ""
}
