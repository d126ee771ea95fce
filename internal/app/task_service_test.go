package app

import (
	"context"
	"strings"
	"testing"

	"mytasker/internal/adapter/memory"
	"mytasker/internal/audit"
)

// captureSink records events for assertions.
type captureSink struct {
	events []audit.Event
}

func (c *captureSink) Record(_ context.Context, e audit.Event) {
	c.events = append(c.events, e)
}

func (c *captureSink) lastAction() string {
	if len(c.events) == 0 {
		return ""
	}
	return c.events[len(c.events)-1].Action
}

func newTaskService() (*TaskService, *captureSink) {
	sink := &captureSink{}
	return NewTaskService(memory.NewTaskRepo(memory.New()), sink, discardLogger()), sink
}

func TestTaskService_Create(t *testing.T) {
	svc, sink := newTaskService()
	ctx := context.Background()

	task, res := svc.Create(ctx, 1, "  Buy milk  ", " 2 liters ")
	if !res.OK {
		t.Fatalf("create failed: %q", res.Message)
	}
	if task.Title != "Buy milk" || task.Description != "2 liters" {
		t.Errorf("fields not trimmed: %+v", task)
	}
	if sink.lastAction() != "create_task" {
		t.Errorf("audit action = %q", sink.lastAction())
	}

	_, res = svc.Create(ctx, 1, "   ", "")
	if res.Message != MsgTaskTitleRequired {
		t.Errorf("got %q, want %q", res.Message, MsgTaskTitleRequired)
	}
	_, res = svc.Create(ctx, 1, strings.Repeat("x", 201), "")
	if res.Message != MsgTaskTitleTooLong {
		t.Errorf("got %q, want %q", res.Message, MsgTaskTitleTooLong)
	}
}

func TestTaskService_OwnershipScoping(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, res := svc.Create(ctx, 1, "Mine", "")
	if !res.OK {
		t.Fatal(res.Message)
	}

	if got, res := svc.Get(ctx, 1, task.ID); !res.OK || got.Title != "Mine" {
		t.Fatalf("owner get: %+v, %+v", got, res)
	}

	// Another user's operations on this task behave like the task does
	// not exist.
	if _, res := svc.Get(ctx, 2, task.ID); res.Message != MsgTaskNotFound {
		t.Errorf("get: got %q, want %q", res.Message, MsgTaskNotFound)
	}
	if res := svc.Toggle(ctx, 2, task.ID); res.Message != MsgTaskNotFound {
		t.Errorf("toggle: got %q, want %q", res.Message, MsgTaskNotFound)
	}
	if res := svc.Update(ctx, 2, task.ID, "Stolen", "", false); res.Message != MsgTaskNotFound {
		t.Errorf("update: got %q, want %q", res.Message, MsgTaskNotFound)
	}
	if res := svc.Delete(ctx, 2, task.ID); res.Message != MsgTaskNotFound {
		t.Errorf("delete: got %q, want %q", res.Message, MsgTaskNotFound)
	}

	tasks, err := svc.List(ctx, 1)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("owner list = %v, %v", tasks, err)
	}
	if other, _ := svc.List(ctx, 2); len(other) != 0 {
		t.Errorf("stranger sees %d tasks", len(other))
	}
}

func TestTaskService_Toggle(t *testing.T) {
	svc, sink := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Flip me", "")

	if res := svc.Toggle(ctx, 1, task.ID); !res.OK {
		t.Fatal(res.Message)
	}
	if sink.lastAction() != "complete_task" {
		t.Errorf("audit action = %q, want complete_task", sink.lastAction())
	}
	tasks, _ := svc.List(ctx, 1)
	if !tasks[0].IsDone {
		t.Error("task not marked done")
	}

	if res := svc.Toggle(ctx, 1, task.ID); !res.OK {
		t.Fatal(res.Message)
	}
	if sink.lastAction() != "reopen_task" {
		t.Errorf("audit action = %q, want reopen_task", sink.lastAction())
	}
	tasks, _ = svc.List(ctx, 1)
	if tasks[0].IsDone {
		t.Error("task not reopened")
	}
}

func TestTaskService_ListOrder(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, 1, "first", "")
	b, _ := svc.Create(ctx, 1, "second", "")
	c, _ := svc.Create(ctx, 1, "third", "")
	svc.Toggle(ctx, 1, b.ID)

	tasks, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Open tasks first, newest first; done tasks last.
	wantOrder := []int64{c.ID, a.ID, b.ID}
	for i, want := range wantOrder {
		if tasks[i].ID != want {
			t.Fatalf("position %d: task %d, want %d (full: %v)", i, tasks[i].ID, want, tasks)
		}
	}
}

func TestTaskService_Delete(t *testing.T) {
	svc, sink := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Remove me", "")
	if res := svc.Delete(ctx, 1, task.ID); !res.OK {
		t.Fatal(res.Message)
	}
	if sink.lastAction() != "delete_task" {
		t.Errorf("audit action = %q", sink.lastAction())
	}
	if tasks, _ := svc.List(ctx, 1); len(tasks) != 0 {
		t.Error("task still listed after delete")
	}
}
