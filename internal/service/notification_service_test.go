package service

import (
	"strings"
	"testing"
	"time"

	"crm-agenda/internal/model"
)

var notifNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

func feedIDs(feed []model.Notification) []string {
	ids := make([]string, 0, len(feed))
	for _, n := range feed {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestOverdueTaskNotification(t *testing.T) {
	overdue := task("t1", "2026-03-13", model.TaskPending, model.PriorityLow)

	feed := DeriveNotifications([]model.Task{overdue}, nil, notifNow)
	if len(feed) != 1 {
		t.Fatalf("feed has %d items, want 1", len(feed))
	}
	n := feed[0]
	if n.Kind != model.NotifOverdueTask {
		t.Fatalf("kind = %s, want overdue_task", n.Kind)
	}
	if n.ID != "overdue_task-task-t1" {
		t.Fatalf("id = %s", n.ID)
	}
	if n.Priority != model.PriorityHigh {
		t.Fatalf("priority = %s, want high", n.Priority)
	}
	if !strings.Contains(n.Description, "2 dias") {
		t.Fatalf("description should carry days overdue: %q", n.Description)
	}
}

func TestUrgentTaskTodayTimeLabel(t *testing.T) {
	urgent := task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh)
	urgent.DueTime = "12:30" // 30 minutes from now

	feed := DeriveNotifications([]model.Task{urgent}, nil, notifNow)
	if len(feed) != 1 {
		t.Fatalf("feed has %d items, want 1", len(feed))
	}
	n := feed[0]
	if n.Kind != model.NotifUrgentTaskToday {
		t.Fatalf("kind = %s, want urgent_task_today", n.Kind)
	}
	if n.TimeLabel != "30min" {
		t.Fatalf("time label = %q, want 30min", n.TimeLabel)
	}
}

func TestUrgentTaskTodayWithoutDueTime(t *testing.T) {
	urgent := task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh)

	feed := DeriveNotifications([]model.Task{urgent}, nil, notifNow)
	if len(feed) != 1 || feed[0].TimeLabel != "hoje" {
		t.Fatalf("expected single notification labeled hoje, got %+v", feed)
	}
}

func TestAppointmentClassificationByProximity(t *testing.T) {
	imminent := appt("a1", "2026-03-15", "12:20", model.AppointmentScheduled) // 20min away
	soon := appt("a2", "2026-03-15", "13:30", model.AppointmentScheduled)     // 90min away
	later := appt("a3", "2026-03-15", "16:00", model.AppointmentScheduled)    // 240min away
	started := appt("a4", "2026-03-15", "11:00", model.AppointmentScheduled)  // already started

	feed := DeriveNotifications(nil, []model.Appointment{imminent, soon, later, started}, notifNow)

	byID := make(map[string]model.Notification)
	for _, n := range feed {
		byID[n.SourceItemID] = n
	}

	if n := byID["a1"]; n.Kind != model.NotifUpcomingAppointment || n.Priority != model.PriorityHigh {
		t.Fatalf("a1 = %+v, want upcoming_appointment/high", n)
	}
	if n := byID["a2"]; n.Kind != model.NotifUpcomingAppointment || n.Priority != model.PriorityMedium {
		t.Fatalf("a2 = %+v, want upcoming_appointment/medium", n)
	}
	if n := byID["a3"]; n.Kind != model.NotifAppointmentToday || n.Priority != model.PriorityLow {
		t.Fatalf("a3 = %+v, want appointment_today/low", n)
	}
	if _, ok := byID["a4"]; ok {
		t.Fatal("an appointment already underway should not notify")
	}
}

func TestNormalTaskTodayKeepsOwnPriority(t *testing.T) {
	normal := task("t1", "2026-03-15", model.TaskPending, model.PriorityMedium)

	feed := DeriveNotifications([]model.Task{normal}, nil, notifNow)
	if len(feed) != 1 {
		t.Fatalf("feed has %d items, want 1", len(feed))
	}
	if feed[0].Kind != model.NotifNormalTaskToday || feed[0].Priority != model.PriorityMedium {
		t.Fatalf("got %s/%s, want normal_task_today/medium", feed[0].Kind, feed[0].Priority)
	}
}

func TestOrderingHighOverdueBeforeLowAppointment(t *testing.T) {
	overdue := task("t1", "2026-03-14", model.TaskPending, model.PriorityHigh)
	today := appt("a1", "2026-03-15", "16:00", model.AppointmentScheduled)

	feed := DeriveNotifications([]model.Task{overdue}, []model.Appointment{today}, notifNow)
	if len(feed) != 2 {
		t.Fatalf("feed has %d items, want 2", len(feed))
	}
	if feed[0].Kind != model.NotifOverdueTask {
		t.Fatalf("feed[0] = %s, want overdue_task first", feed[0].Kind)
	}
}

func TestOrderingKindRankBreaksPriorityTies(t *testing.T) {
	// Both high priority: urgent-today must still sort after overdue.
	urgent := task("t1", "2026-03-15", model.TaskPending, model.PriorityHigh)
	overdue := task("t2", "2026-03-14", model.TaskPending, model.PriorityMedium)

	feed := DeriveNotifications([]model.Task{urgent, overdue}, nil, notifNow)
	if len(feed) != 2 {
		t.Fatalf("feed has %d items, want 2", len(feed))
	}
	if feed[0].Kind != model.NotifOverdueTask || feed[1].Kind != model.NotifUrgentTaskToday {
		t.Fatalf("order = %s, %s; want overdue_task then urgent_task_today",
			feed[0].Kind, feed[1].Kind)
	}
}

func TestDerivationIsDeterministic(t *testing.T) {
	tasks := []model.Task{
		task("t1", "2026-03-14", model.TaskPending, model.PriorityHigh),
		task("t2", "2026-03-15", model.TaskPending, model.PriorityHigh),
		task("t3", "2026-03-15", model.TaskPending, model.PriorityLow),
	}
	appts := []model.Appointment{
		appt("a1", "2026-03-15", "12:30", model.AppointmentScheduled),
		appt("a2", "2026-03-15", "17:00", model.AppointmentConfirmed),
	}

	first := feedIDs(DeriveNotifications(tasks, appts, notifNow))
	second := feedIDs(DeriveNotifications(tasks, appts, notifNow))

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("id lists diverge at %d: %v vs %v", i, first, second)
		}
	}
}

func TestDoneAndMutedTasksProduceNothing(t *testing.T) {
	done := task("t1", "2026-03-14", model.TaskDone, model.PriorityHigh)
	muted := task("t2", "2026-03-14", model.TaskPending, model.PriorityHigh)
	muted.NotificationsEnabled = false

	feed := DeriveNotifications([]model.Task{done, muted}, nil, notifNow)
	if len(feed) != 0 {
		t.Fatalf("feed should be empty, got %v", feedIDs(feed))
	}
}

func TestMalformedDueDateSkipped(t *testing.T) {
	bad := task("t1", "descombinado", model.TaskPending, model.PriorityHigh)

	feed := DeriveNotifications([]model.Task{bad}, nil, notifNow)
	if len(feed) != 0 {
		t.Fatalf("malformed date should not notify, got %v", feedIDs(feed))
	}
}

func TestOrderingKindRanksWithinHighPriority(t *testing.T) {
	// overdue(6) > urgent_today(5) > upcoming_appointment(4), all high.
	overdue := task("t1", "2026-03-14", model.TaskPending, model.PriorityMedium)
	urgent := task("t2", "2026-03-15", model.TaskPending, model.PriorityHigh)
	imminent := appt("a1", "2026-03-15", "12:15", model.AppointmentScheduled)

	feed := DeriveNotifications([]model.Task{urgent, overdue}, []model.Appointment{imminent}, notifNow)
	got := make([]model.NotificationKind, 0, len(feed))
	for _, n := range feed {
		got = append(got, n.Kind)
	}
	want := []model.NotificationKind{
		model.NotifOverdueTask,
		model.NotifUrgentTaskToday,
		model.NotifUpcomingAppointment,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}
