package service

import (
	"context"
	"fmt"
	"time"

	"crm-agenda/internal/model"
	"crm-agenda/internal/repository"
)

// fakeTaskStore is an in-memory TaskStore mirroring the repository's
// completion-stamp behavior.
type fakeTaskStore struct {
	tasks   map[string]*model.Task
	listErr error
	deleted []string
}

func newFakeTaskStore(tasks ...model.Task) *fakeTaskStore {
	f := &fakeTaskStore{tasks: make(map[string]*model.Task)}
	for i := range tasks {
		t := tasks[i]
		f.tasks[t.ID] = &t
	}
	return f
}

func (f *fakeTaskStore) List(_ context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Task
	for _, t := range f.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTaskStore) FindByID(_ context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *model.Task, now time.Time) error {
	if task.Status == model.TaskDone {
		if task.CompletedAt == nil {
			stamped := now
			task.CompletedAt = &stamped
		}
	} else {
		task.CompletedAt = nil
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id string) error {
	delete(f.tasks, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeApptStore is the appointment counterpart.
type fakeApptStore struct {
	appts   map[string]*model.Appointment
	listErr error
	deleted []string
}

func newFakeApptStore(appts ...model.Appointment) *fakeApptStore {
	f := &fakeApptStore{appts: make(map[string]*model.Appointment)}
	for i := range appts {
		a := appts[i]
		f.appts[a.ID] = &a
	}
	return f
}

func (f *fakeApptStore) List(_ context.Context, filter repository.AppointmentFilter) ([]model.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Appointment
	for _, a := range f.appts {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Kind != nil && a.Kind != *filter.Kind {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeApptStore) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeApptStore) Update(_ context.Context, appt *model.Appointment, now time.Time) error {
	if appt.Status == model.AppointmentCompleted {
		if appt.CompletedAt == nil {
			stamped := now
			appt.CompletedAt = &stamped
		}
	} else {
		appt.CompletedAt = nil
	}
	copied := *appt
	f.appts[appt.ID] = &copied
	return nil
}

func (f *fakeApptStore) Delete(_ context.Context, id string) error {
	delete(f.appts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func task(id, dueDate string, status model.TaskStatus, priority model.Priority) model.Task {
	return model.Task{
		ID:                   id,
		Title:                "Tarefa " + id,
		Status:               status,
		Priority:             priority,
		DueDate:              dueDate,
		Category:             model.CategorySales,
		NotificationsEnabled: true,
	}
}

func appt(id, date, start string, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{
		ID:        id,
		Title:     "Compromisso " + id,
		Kind:      model.KindMeeting,
		Date:      date,
		StartTime: start,
		EndTime:   "23:00",
		Status:    status,
	}
}
