package model

import (
	"fmt"
	"time"
)

// NotificationKind identifies which classification rule produced a notification.
type NotificationKind string

const (
	NotifOverdueTask         NotificationKind = "overdue_task"
	NotifUrgentTaskToday     NotificationKind = "urgent_task_today"
	NotifUpcomingAppointment NotificationKind = "upcoming_appointment"
	NotifAppointmentToday    NotificationKind = "appointment_today"
	NotifNormalTaskToday     NotificationKind = "normal_task_today"
)

// ItemType tags which collection a derived notification came from.
type ItemType string

const (
	ItemTask        ItemType = "task"
	ItemAppointment ItemType = "appointment"
)

// NotificationAction is an optional call-to-action attached to a notification.
type NotificationAction struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

// Notification is derived state: it is recomputed from the task and
// appointment collections on every refresh and never persisted as a
// source of truth. Read/removed flags live in the read-state overlay,
// keyed by the same deterministic ID.
type Notification struct {
	ID             string              `json:"id"`
	Kind           NotificationKind    `json:"kind"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	TimeLabel      string              `json:"timeLabel"`
	Priority       Priority            `json:"priority"`
	CreatedAt      time.Time           `json:"createdAt"`
	Action         *NotificationAction `json:"action,omitempty"`
	SourceItemID   string              `json:"sourceItemId"`
	SourceItemType ItemType            `json:"sourceItemType"`
}

// NotificationID builds the deterministic identifier for a (kind, item) pair.
// Regenerating the feed yields the same IDs, which is what makes merging
// with the read overlay safe.
func NotificationID(kind NotificationKind, itemType ItemType, itemID string) string {
	return fmt.Sprintf("%s-%s-%s", kind, itemType, itemID)
}
