package model

import "time"

// AppointmentKind classifies what kind of engagement an appointment is.
type AppointmentKind string

const (
	KindMeeting AppointmentKind = "meeting"
	KindCall    AppointmentKind = "call"
	KindSupport AppointmentKind = "support"
	KindTravel  AppointmentKind = "travel"
	KindEvent   AppointmentKind = "event"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Appointment is a scheduled engagement with a fixed date and time slot.
// Date/StartTime/EndTime follow the same civil string conventions as Task.
type Appointment struct {
	ID           string `gorm:"primaryKey"`
	Title        string
	Kind         AppointmentKind `gorm:"index"`
	Date         string          `gorm:"index"`
	StartTime    string
	EndTime      string
	Location     string
	Participants []string `gorm:"serializer:json"`
	Description  string
	Status       AppointmentStatus `gorm:"index"`
	ClientID     *string           `gorm:"index"`
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Open reports whether the appointment is still on the calendar.
func (a Appointment) Open() bool {
	return a.Status != AppointmentCompleted && a.Status != AppointmentCancelled
}
