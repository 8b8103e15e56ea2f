package service

import (
	"fmt"
	"sort"
	"time"

	"crm-agenda/internal/dateutil"
	"crm-agenda/internal/model"
)

// upcomingSoonMinutes is the horizon inside which an appointment today is
// promoted to an upcoming_appointment notification; within
// imminentMinutes it is escalated to high priority.
const (
	upcomingSoonMinutes = 120
	imminentMinutes     = 30
)

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   3,
	model.PriorityMedium: 2,
	model.PriorityLow:    1,
}

var kindRank = map[model.NotificationKind]int{
	model.NotifOverdueTask:         6,
	model.NotifUrgentTaskToday:     5,
	model.NotifUpcomingAppointment: 4,
	model.NotifAppointmentToday:    2,
	model.NotifNormalTaskToday:     1,
}

// DeriveNotifications recomputes the full notification feed from the
// collections at a single instant. The result is deterministic: the same
// inputs and now always yield the same ordered id list, and the
// content-addressed ids make one notification per (kind, item) pair.
func DeriveNotifications(tasks []model.Task, appts []model.Appointment, now time.Time) []model.Notification {
	var feed []model.Notification

	for i := range tasks {
		t := &tasks[i]
		if t.Status == model.TaskDone || !t.NotificationsEnabled {
			continue
		}
		rel, ok := dateutil.CompareToToday(t.DueDate, now)
		if !ok {
			continue
		}
		switch {
		case rel == dateutil.Past:
			feed = append(feed, overdueTaskNotification(t, now))
		case rel == dateutil.Today && t.Priority == model.PriorityHigh:
			feed = append(feed, urgentTaskNotification(t, now))
		case rel == dateutil.Today:
			feed = append(feed, normalTaskNotification(t, now))
		}
	}

	for i := range appts {
		a := &appts[i]
		if a.Status == model.AppointmentCompleted {
			continue
		}
		rel, ok := dateutil.CompareToToday(a.Date, now)
		if !ok || rel != dateutil.Today {
			continue
		}
		mins, ok := dateutil.MinutesUntilClock(a.StartTime, now)
		if !ok {
			continue
		}
		switch {
		case mins >= 0 && mins <= upcomingSoonMinutes:
			feed = append(feed, upcomingAppointmentNotification(a, mins, now))
		case mins > upcomingSoonMinutes:
			feed = append(feed, appointmentTodayNotification(a, now))
		}
	}

	// Primary key: priority rank, descending. Secondary key: kind urgency,
	// descending. Remaining ties keep discovery order (stable sort).
	sort.SliceStable(feed, func(i, j int) bool {
		if priorityRank[feed[i].Priority] != priorityRank[feed[j].Priority] {
			return priorityRank[feed[i].Priority] > priorityRank[feed[j].Priority]
		}
		return kindRank[feed[i].Kind] > kindRank[feed[j].Kind]
	})

	return feed
}

func overdueTaskNotification(t *model.Task, now time.Time) model.Notification {
	days := dateutil.DaysOverdue(t.DueDate, now)
	return model.Notification{
		ID:             model.NotificationID(model.NotifOverdueTask, model.ItemTask, t.ID),
		Kind:           model.NotifOverdueTask,
		Title:          t.Title,
		Description:    fmt.Sprintf("Tarefa atrasada há %s", pluralDays(days)),
		TimeLabel:      fmt.Sprintf("há %s", pluralDays(days)),
		Priority:       model.PriorityHigh,
		CreatedAt:      now,
		Action:         taskAction(t.ID),
		SourceItemID:   t.ID,
		SourceItemType: model.ItemTask,
	}
}

func urgentTaskNotification(t *model.Task, now time.Time) model.Notification {
	label := "hoje"
	if t.DueTime != "" {
		if deadline, ok := dateutil.Combine(t.DueDate, t.DueTime, now.Location()); ok {
			if r := dateutil.TimeRemainingUntil(deadline, now); !r.Expired {
				label = formatRemaining(r)
			}
		}
	}
	return model.Notification{
		ID:             model.NotificationID(model.NotifUrgentTaskToday, model.ItemTask, t.ID),
		Kind:           model.NotifUrgentTaskToday,
		Title:          t.Title,
		Description:    "Tarefa de alta prioridade vence hoje",
		TimeLabel:      label,
		Priority:       model.PriorityHigh,
		CreatedAt:      now,
		Action:         taskAction(t.ID),
		SourceItemID:   t.ID,
		SourceItemType: model.ItemTask,
	}
}

func normalTaskNotification(t *model.Task, now time.Time) model.Notification {
	return model.Notification{
		ID:             model.NotificationID(model.NotifNormalTaskToday, model.ItemTask, t.ID),
		Kind:           model.NotifNormalTaskToday,
		Title:          t.Title,
		Description:    "Tarefa vence hoje",
		TimeLabel:      "hoje",
		Priority:       t.Priority,
		CreatedAt:      now,
		Action:         taskAction(t.ID),
		SourceItemID:   t.ID,
		SourceItemType: model.ItemTask,
	}
}

func upcomingAppointmentNotification(a *model.Appointment, minutesAway int, now time.Time) model.Notification {
	priority := model.PriorityMedium
	if minutesAway <= imminentMinutes {
		priority = model.PriorityHigh
	}
	return model.Notification{
		ID:             model.NotificationID(model.NotifUpcomingAppointment, model.ItemAppointment, a.ID),
		Kind:           model.NotifUpcomingAppointment,
		Title:          a.Title,
		Description:    appointmentDescription(a),
		TimeLabel:      fmt.Sprintf("em %s", pluralMinutes(minutesAway)),
		Priority:       priority,
		CreatedAt:      now,
		Action:         appointmentAction(a.ID),
		SourceItemID:   a.ID,
		SourceItemType: model.ItemAppointment,
	}
}

func appointmentTodayNotification(a *model.Appointment, now time.Time) model.Notification {
	return model.Notification{
		ID:             model.NotificationID(model.NotifAppointmentToday, model.ItemAppointment, a.ID),
		Kind:           model.NotifAppointmentToday,
		Title:          a.Title,
		Description:    appointmentDescription(a),
		TimeLabel:      fmt.Sprintf("hoje às %s", a.StartTime),
		Priority:       model.PriorityLow,
		CreatedAt:      now,
		Action:         appointmentAction(a.ID),
		SourceItemID:   a.ID,
		SourceItemType: model.ItemAppointment,
	}
}

func appointmentDescription(a *model.Appointment) string {
	if a.Location != "" {
		return fmt.Sprintf("Compromisso às %s em %s", a.StartTime, a.Location)
	}
	return fmt.Sprintf("Compromisso às %s", a.StartTime)
}

func taskAction(id string) *model.NotificationAction {
	return &model.NotificationAction{Label: "Ver tarefa", Link: "/tarefas/" + id}
}

func appointmentAction(id string) *model.NotificationAction {
	return &model.NotificationAction{Label: "Ver compromisso", Link: "/compromissos/" + id}
}

func formatRemaining(r dateutil.Remaining) string {
	if r.Hours > 0 {
		return fmt.Sprintf("%dh %02dmin", r.Hours, r.Minutes)
	}
	return fmt.Sprintf("%dmin", r.Minutes)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", n)
}

func pluralMinutes(n int) string {
	if n >= 60 {
		return fmt.Sprintf("%dh %02dmin", n/60, n%60)
	}
	return fmt.Sprintf("%dmin", n)
}
