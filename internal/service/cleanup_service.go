package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"crm-agenda/internal/model"
	"crm-agenda/internal/repository"
)

// CleanupService is the periodic sweep that hard-deletes completed items
// once their undo window has closed. The sweep is best-effort: a delete of
// an already-gone id is a no-op, and per-item failures are logged and
// skipped so the rest of the batch still runs.
type CleanupService struct {
	tasks TaskStore
	appts AppointmentStore
	now   func() time.Time
}

func NewCleanupService(tasks TaskStore, appts AppointmentStore, now func() time.Time) *CleanupService {
	if now == nil {
		now = time.Now
	}
	return &CleanupService{tasks: tasks, appts: appts, now: now}
}

// Sweep purges expired completions from both collections and returns how
// many items were deleted.
func (s *CleanupService) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	purged := 0

	done := model.TaskDone
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{Status: &done})
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	for _, t := range tasks {
		if !purgeDue(t.CompletedAt, now) {
			continue
		}
		if err := s.tasks.Delete(ctx, t.ID); err != nil {
			log.Printf("[warn] cleanup: purge task %s: %v", t.ID, err)
			continue
		}
		purged++
	}

	completed := model.AppointmentCompleted
	appts, err := s.appts.List(ctx, repository.AppointmentFilter{Status: &completed})
	if err != nil {
		return purged, fmt.Errorf("cleanup: %w", err)
	}
	for _, a := range appts {
		if !purgeDue(a.CompletedAt, now) {
			continue
		}
		if err := s.appts.Delete(ctx, a.ID); err != nil {
			log.Printf("[warn] cleanup: purge appointment %s: %v", a.ID, err)
			continue
		}
		purged++
	}

	return purged, nil
}

// purgeDue is the exact complement of the undo window: undo is possible
// strictly before completedAt+5h, purge strictly from it onward.
func purgeDue(completedAt *time.Time, now time.Time) bool {
	if completedAt == nil {
		return false
	}
	return now.Sub(*completedAt) >= UndoWindow
}
