package service

import (
	"sort"
	"time"

	"crm-agenda/internal/dateutil"
	"crm-agenda/internal/model"
)

const (
	// DisplayLimit caps each bucket when trimmed for the dashboard.
	DisplayLimit = 5
	// UpcomingWindowDays is the horizon of the upcoming bucket, inclusive.
	UpcomingWindowDays = 7
)

// ItemRef tags a task or appointment with its origin so mixed buckets can
// carry both. Exactly one of Task/Appointment is set.
type ItemRef struct {
	Type        model.ItemType
	Date        string
	Clock       string
	Task        *model.Task
	Appointment *model.Appointment
}

// Title returns the underlying item's title.
func (r ItemRef) Title() string {
	if r.Task != nil {
		return r.Task.Title
	}
	if r.Appointment != nil {
		return r.Appointment.Title
	}
	return ""
}

// ID returns the underlying item's id.
func (r ItemRef) ID() string {
	if r.Task != nil {
		return r.Task.ID
	}
	if r.Appointment != nil {
		return r.Appointment.ID
	}
	return ""
}

func (r ItemRef) completedAt() *time.Time {
	if r.Task != nil {
		return r.Task.CompletedAt
	}
	if r.Appointment != nil {
		return r.Appointment.CompletedAt
	}
	return nil
}

// Statistics are the dashboard counters derived from the full collections.
type Statistics struct {
	PendingTasks      int
	OverdueTasks      int
	AppointmentsToday int
	HighPriorityOpen  int
}

// Agenda is the classified view of the collections at a single instant.
// The buckets hold the full qualifying sets; Display trims them.
type Agenda struct {
	Stats             Statistics
	Upcoming          []ItemRef
	Overdue           []ItemRef
	RecentlyCompleted []ItemRef
}

// Display returns a copy of the agenda with each bucket truncated to
// DisplayLimit entries.
func (a Agenda) Display() Agenda {
	a.Upcoming = truncate(a.Upcoming)
	a.Overdue = truncate(a.Overdue)
	a.RecentlyCompleted = truncate(a.RecentlyCompleted)
	return a
}

func truncate(items []ItemRef) []ItemRef {
	if len(items) <= DisplayLimit {
		return items
	}
	return items[:DisplayLimit]
}

// BuildAgenda classifies the collections into time-relative buckets. It is a
// pure function of its inputs: everything is measured against the injected
// now. Items with malformed dates are skipped instead of misclassified.
func BuildAgenda(tasks []model.Task, appts []model.Appointment, now time.Time) Agenda {
	var agenda Agenda

	today := dateutil.CivilDate(now)
	windowEnd := dateutil.AddDays(today, UpcomingWindowDays)

	for i := range tasks {
		t := &tasks[i]

		if t.Open() {
			agenda.Stats.PendingTasks++
		}
		if t.Priority == model.PriorityHigh && t.Status != model.TaskDone {
			agenda.Stats.HighPriorityOpen++
		}

		rel, ok := dateutil.CompareToToday(t.DueDate, now)
		if t.Status != model.TaskDone && ok && rel == dateutil.Past {
			agenda.Stats.OverdueTasks++
			agenda.Overdue = append(agenda.Overdue, ItemRef{
				Type: model.ItemTask, Date: t.DueDate, Clock: t.DueTime, Task: t,
			})
		}
		if t.Status != model.TaskDone && dateutil.WithinRange(t.DueDate, today, windowEnd) {
			agenda.Upcoming = append(agenda.Upcoming, ItemRef{
				Type: model.ItemTask, Date: t.DueDate, Clock: t.DueTime, Task: t,
			})
		}
		if t.Status == model.TaskDone && recentlyCompleted(t.CompletedAt, now) {
			agenda.RecentlyCompleted = append(agenda.RecentlyCompleted, ItemRef{
				Type: model.ItemTask, Date: t.DueDate, Clock: t.DueTime, Task: t,
			})
		}
	}

	for i := range appts {
		a := &appts[i]

		rel, ok := dateutil.CompareToToday(a.Date, now)
		if a.Status != model.AppointmentCompleted && ok && rel == dateutil.Today {
			agenda.Stats.AppointmentsToday++
		}
		if a.Status != model.AppointmentCompleted && dateutil.WithinRange(a.Date, today, windowEnd) {
			agenda.Upcoming = append(agenda.Upcoming, ItemRef{
				Type: model.ItemAppointment, Date: a.Date, Clock: a.StartTime, Appointment: a,
			})
		}
		if a.Status == model.AppointmentCompleted && recentlyCompleted(a.CompletedAt, now) {
			agenda.RecentlyCompleted = append(agenda.RecentlyCompleted, ItemRef{
				Type: model.ItemAppointment, Date: a.Date, Clock: a.StartTime, Appointment: a,
			})
		}
	}

	// Upcoming: soonest first, same-day items ordered by their clock field.
	sort.SliceStable(agenda.Upcoming, func(i, j int) bool {
		left, right := agenda.Upcoming[i], agenda.Upcoming[j]
		if left.Date != right.Date {
			return left.Date < right.Date
		}
		return left.Clock < right.Clock
	})

	// Overdue: most recently missed first, so the least stale item is the
	// first thing the user sees.
	sort.SliceStable(agenda.Overdue, func(i, j int) bool {
		return agenda.Overdue[i].Date > agenda.Overdue[j].Date
	})

	// Recently completed: newest completion first, compared as instants.
	sort.SliceStable(agenda.RecentlyCompleted, func(i, j int) bool {
		left, right := agenda.RecentlyCompleted[i].completedAt(), agenda.RecentlyCompleted[j].completedAt()
		if left == nil || right == nil {
			return right == nil && left != nil
		}
		return left.After(*right)
	})

	return agenda
}

func recentlyCompleted(completedAt *time.Time, now time.Time) bool {
	if completedAt == nil {
		return false
	}
	age := now.Sub(*completedAt)
	return age >= 0 && age < UndoWindow
}
