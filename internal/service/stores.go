package service

import (
	"context"
	"time"

	"crm-agenda/internal/model"
	"crm-agenda/internal/repository"
)

// TaskStore is the slice of the task adapter the services consume.
// *repository.TaskRepository satisfies it; tests use in-memory fakes.
type TaskStore interface {
	List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error)
	FindByID(ctx context.Context, id string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// AppointmentStore is the appointment counterpart of TaskStore.
type AppointmentStore interface {
	List(ctx context.Context, filter repository.AppointmentFilter) ([]model.Appointment, error)
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment, now time.Time) error
	Delete(ctx context.Context, id string) error
}
