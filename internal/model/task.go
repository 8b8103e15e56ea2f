package model

import "time"

// Priority ranks how urgent an item is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskCategory groups tasks by business area.
type TaskCategory string

const (
	CategorySales   TaskCategory = "sales"
	CategorySupport TaskCategory = "support"
	CategoryAdmin   TaskCategory = "admin"
	CategoryMeeting TaskCategory = "meeting"
	CategoryTravel  TaskCategory = "travel"
)

// Task represents a single actionable item in the agency agenda.
// DueDate is a civil date (YYYY-MM-DD) and DueTime an optional HH:MM;
// both are kept as strings so classification never depends on the
// runtime timezone.
type Task struct {
	ID                   string `gorm:"primaryKey"`
	Title                string
	Description          string
	Priority             Priority   `gorm:"index"`
	Status               TaskStatus `gorm:"index"`
	DueDate              string     `gorm:"index"`
	DueTime              string
	Owner                string
	Category             TaskCategory
	ClientID             *string `gorm:"index"`
	NotificationsEnabled bool    `gorm:"default:true"`
	CompletedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Open reports whether the task still counts as active work.
func (t Task) Open() bool {
	return t.Status != TaskDone && t.Status != TaskCancelled
}
