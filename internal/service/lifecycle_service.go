package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-agenda/internal/dateutil"
	"crm-agenda/internal/model"
)

// UndoWindow bounds how long a completed item can be reverted. It doubles
// as the recently-completed horizon and the purge threshold: once the
// window closes the item only awaits the cleanup sweep.
const UndoWindow = 5 * time.Hour

// ErrUndoExpired is returned when a completion is too old to revert.
var ErrUndoExpired = errors.New("undo window expired")

// ErrNotCompleted is returned when undo is requested for an open item.
var ErrNotCompleted = errors.New("item is not completed")

// LifecycleService drives the open -> completed -> undone/purged state
// machine for tasks and appointments.
type LifecycleService struct {
	tasks TaskStore
	appts AppointmentStore
	now   func() time.Time
}

// NewLifecycleService wires the lifecycle over both stores. A nil now falls
// back to time.Now.
func NewLifecycleService(tasks TaskStore, appts AppointmentStore, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{tasks: tasks, appts: appts, now: now}
}

// CompleteTask marks a task done, stamping completed_at with the current
// instant. The task leaves the active buckets and the notification feed on
// the next regeneration.
func (s *LifecycleService) CompleteTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Status = model.TaskDone
	task.CompletedAt = nil // repository stamps on save
	if err := s.tasks.Update(ctx, task, s.now()); err != nil {
		return nil, err
	}
	return task, nil
}

// UndoTask reverts a completed task to pending while the undo window is
// open, clearing completed_at.
func (s *LifecycleService) UndoTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskDone || task.CompletedAt == nil {
		return nil, fmt.Errorf("undo task %s: %w", id, ErrNotCompleted)
	}
	if s.UndoRemaining(task.CompletedAt).Expired {
		return nil, fmt.Errorf("undo task %s: %w", id, ErrUndoExpired)
	}
	task.Status = model.TaskPending
	if err := s.tasks.Update(ctx, task, s.now()); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteAppointment marks an appointment completed, stamping completed_at.
func (s *LifecycleService) CompleteAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.appts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	appt.Status = model.AppointmentCompleted
	appt.CompletedAt = nil
	if err := s.appts.Update(ctx, appt, s.now()); err != nil {
		return nil, err
	}
	return appt, nil
}

// UndoAppointment reverts a completed appointment to scheduled while the
// undo window is open.
func (s *LifecycleService) UndoAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.appts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentCompleted || appt.CompletedAt == nil {
		return nil, fmt.Errorf("undo appointment %s: %w", id, ErrNotCompleted)
	}
	if s.UndoRemaining(appt.CompletedAt).Expired {
		return nil, fmt.Errorf("undo appointment %s: %w", id, ErrUndoExpired)
	}
	appt.Status = model.AppointmentScheduled
	if err := s.appts.Update(ctx, appt, s.now()); err != nil {
		return nil, err
	}
	return appt, nil
}

// UndoRemaining measures how much of the undo window is left for a
// completion stamp. Callers display it next to the undo control.
func (s *LifecycleService) UndoRemaining(completedAt *time.Time) dateutil.Remaining {
	if completedAt == nil {
		return dateutil.Remaining{Expired: true}
	}
	return dateutil.TimeRemainingUntil(completedAt.Add(UndoWindow), s.now())
}
