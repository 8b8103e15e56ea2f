package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-agenda/internal/model"
)

var lifecycleNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

func newLifecycle(tasks *fakeTaskStore, appts *fakeApptStore, clock *time.Time) *LifecycleService {
	return NewLifecycleService(tasks, appts, func() time.Time { return *clock })
}

func TestCompleteTaskStampsCompletedAt(t *testing.T) {
	clock := lifecycleNow
	store := newFakeTaskStore(task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh))
	svc := newLifecycle(store, newFakeApptStore(), &clock)

	done, err := svc.CompleteTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.TaskDone {
		t.Fatalf("status = %s, want done", done.Status)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(lifecycleNow) {
		t.Fatalf("completed_at = %v, want %v", done.CompletedAt, lifecycleNow)
	}
}

func TestUndoTaskWithinWindow(t *testing.T) {
	clock := lifecycleNow
	store := newFakeTaskStore(task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh))
	svc := newLifecycle(store, newFakeApptStore(), &clock)

	if _, err := svc.CompleteTask(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}

	clock = lifecycleNow.Add(4*time.Hour + 59*time.Minute)
	undone, err := svc.UndoTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("undo at 4h59m should succeed: %v", err)
	}
	if undone.Status != model.TaskPending {
		t.Fatalf("status = %s, want pending", undone.Status)
	}
	if undone.CompletedAt != nil {
		t.Fatal("undo must clear completed_at")
	}
}

func TestUndoTaskAfterWindowExpires(t *testing.T) {
	clock := lifecycleNow
	store := newFakeTaskStore(task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh))
	svc := newLifecycle(store, newFakeApptStore(), &clock)

	if _, err := svc.CompleteTask(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}

	clock = lifecycleNow.Add(5*time.Hour + time.Minute)
	if _, err := svc.UndoTask(context.Background(), "t1"); !errors.Is(err, ErrUndoExpired) {
		t.Fatalf("undo at 5h01m should fail with ErrUndoExpired, got %v", err)
	}
}

func TestUndoOpenTaskRejected(t *testing.T) {
	clock := lifecycleNow
	store := newFakeTaskStore(task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh))
	svc := newLifecycle(store, newFakeApptStore(), &clock)

	if _, err := svc.UndoTask(context.Background(), "t1"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("undoing an open task should fail with ErrNotCompleted, got %v", err)
	}
}

func TestAppointmentUndoRevertsToScheduled(t *testing.T) {
	clock := lifecycleNow
	store := newFakeApptStore(appt("a1", "2026-03-15", "10:00", model.AppointmentConfirmed))
	svc := newLifecycle(newFakeTaskStore(), store, &clock)

	done, err := svc.CompleteAppointment(context.Background(), "a1")
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != model.AppointmentCompleted || done.CompletedAt == nil {
		t.Fatalf("completion not stamped: %+v", done)
	}

	clock = lifecycleNow.Add(time.Hour)
	undone, err := svc.UndoAppointment(context.Background(), "a1")
	if err != nil {
		t.Fatal(err)
	}
	if undone.Status != model.AppointmentScheduled {
		t.Fatalf("status = %s, want scheduled", undone.Status)
	}
	if undone.CompletedAt != nil {
		t.Fatal("undo must clear completed_at")
	}
}

func TestUndoRemaining(t *testing.T) {
	clock := lifecycleNow
	svc := newLifecycle(newFakeTaskStore(), newFakeApptStore(), &clock)

	stamp := lifecycleNow.Add(-2 * time.Hour)
	r := svc.UndoRemaining(&stamp)
	if r.Expired || r.Hours != 3 || r.Minutes != 0 {
		t.Fatalf("remaining = %+v, want 3h00", r)
	}

	old := lifecycleNow.Add(-6 * time.Hour)
	if r := svc.UndoRemaining(&old); !r.Expired {
		t.Fatal("remaining should be expired past the window")
	}
	if r := svc.UndoRemaining(nil); !r.Expired {
		t.Fatal("nil stamp counts as expired")
	}
}
