package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-agenda/internal/model"
)

// AppointmentFilter narrows List queries, same conventions as TaskFilter.
type AppointmentFilter struct {
	Status   *model.AppointmentStatus
	Kind     *model.AppointmentKind
	DateFrom string
	DateTo   string
}

// AppointmentRepository handles CRUD for appointments.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	var appts []model.Appointment
	if err := q.Order("date ASC, start_time ASC").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Update saves the appointment, enforcing the same completion invariant as
// TaskRepository.Update.
func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment, now time.Time) error {
	if appt.Status == model.AppointmentCompleted {
		if appt.CompletedAt == nil {
			stamped := now
			appt.CompletedAt = &stamped
		}
	} else {
		appt.CompletedAt = nil
	}
	if err := r.db.WithContext(ctx).Save(appt).Error; err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// Delete removes an appointment permanently; missing ids are a no-op.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Appointment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
