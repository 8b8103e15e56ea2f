package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-agenda/internal/model"
)

// TaskFilter narrows List queries. Nil fields are ignored. Date bounds are
// inclusive civil dates (YYYY-MM-DD).
type TaskFilter struct {
	Status   *model.TaskStatus
	Priority *model.Priority
	DateFrom string
	DateTo   string
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.DateFrom != "" {
		q = q.Where("due_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("due_date <= ?", filter.DateTo)
	}

	var tasks []model.Task
	if err := q.Order("due_date ASC, due_time ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &task, nil
}

// Update saves the task, enforcing the completion invariant: moving the
// status to done stamps completed_at, moving it away clears it. The stamp is
// preserved when the task was already done.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, now time.Time) error {
	if task.Status == model.TaskDone {
		if task.CompletedAt == nil {
			stamped := now
			task.CompletedAt = &stamped
		}
	} else {
		task.CompletedAt = nil
	}
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes a task permanently. Deleting an id that no longer exists is
// a no-op so that racing cleanup sweeps stay idempotent.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
