package app

import (
	"context"
	"testing"

	"mytasker/internal/adapter/memory"
)

func newNotificationService() (*NotificationService, *captureSink) {
	sink := &captureSink{}
	return NewNotificationService(memory.NewNotificationRepo(memory.New()), sink, discardLogger()), sink
}

func TestNotificationService_Create(t *testing.T) {
	svc, sink := newNotificationService()
	ctx := context.Background()

	n, res := svc.Create(ctx, 1, " Maintenance ", " Down at noon ")
	if !res.OK {
		t.Fatal(res.Message)
	}
	if n.Title != "Maintenance" || n.Message != "Down at noon" {
		t.Errorf("fields not trimmed: %+v", n)
	}
	if sink.lastAction() != "CREATE_NOTIFICATION" {
		t.Errorf("audit action = %q", sink.lastAction())
	}

	if _, res := svc.Create(ctx, 1, "", "body"); res.Message != MsgNotificationTitleRequired {
		t.Errorf("got %q, want %q", res.Message, MsgNotificationTitleRequired)
	}
	if _, res := svc.Create(ctx, 1, "title", "  "); res.Message != MsgNotificationMessageRequired {
		t.Errorf("got %q, want %q", res.Message, MsgNotificationMessageRequired)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, sink := newNotificationService()
	ctx := context.Background()

	n, _ := svc.Create(ctx, 1, "Announce", "body")

	if res := svc.MarkRead(ctx, 5, 999); res.Message != MsgNotificationNotFound {
		t.Fatalf("unknown notification: got %q, want %q", res.Message, MsgNotificationNotFound)
	}

	if res := svc.MarkRead(ctx, 5, n.ID); !res.OK {
		t.Fatal(res.Message)
	}
	if sink.lastAction() != "READ_NOTIFICATION" {
		t.Errorf("audit action = %q", sink.lastAction())
	}

	// Re-reading is not an error and keeps the count at one reader.
	if res := svc.MarkRead(ctx, 5, n.ID); !res.OK {
		t.Fatal(res.Message)
	}

	list, err := svc.ListForUser(ctx, 5)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
	if !list[0].Read {
		t.Error("read flag not set for the reader")
	}
	if other, _ := svc.ListForUser(ctx, 6); other[0].Read {
		t.Error("read flag leaked to another user")
	}

	counts, _ := svc.ListWithReadCounts(ctx)
	if counts[0].ReadCount != 1 {
		t.Errorf("read count = %d, want 1", counts[0].ReadCount)
	}
}

func TestNotificationService_Delete(t *testing.T) {
	svc, sink := newNotificationService()
	ctx := context.Background()

	n, _ := svc.Create(ctx, 1, "Old news", "body")
	svc.MarkRead(ctx, 2, n.ID)

	if res := svc.Delete(ctx, 1, 999); res.Message != MsgNotificationNotFound {
		t.Fatalf("got %q, want %q", res.Message, MsgNotificationNotFound)
	}
	if res := svc.Delete(ctx, 1, n.ID); !res.OK {
		t.Fatal(res.Message)
	}
	if sink.lastAction() != "DELETE_NOTIFICATION" {
		t.Errorf("audit action = %q", sink.lastAction())
	}
	if list, _ := svc.ListForUser(ctx, 2); len(list) != 0 {
		t.Error("notification still listed after delete")
	}
}
