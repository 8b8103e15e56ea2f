package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crm-agenda/internal/cache"
	"crm-agenda/internal/repository"
)

// ErrStoreUnavailable wraps persistence failures during regeneration. The
// overlay is left untouched in that case so the next tick can recover.
var ErrStoreUnavailable = errors.New("agenda store unavailable")

// FeedService owns feed regeneration: it fetches one consistent snapshot of
// both collections, derives buckets and notifications from it with a single
// now, and merges the result through the read-state overlay. Only one
// regeneration runs at a time; requests arriving while one is in flight
// wait for its result instead of stacking fetches.
type FeedService struct {
	tasks   TaskStore
	appts   AppointmentStore
	overlay *cache.ReadState
	now     func() time.Time

	mu       sync.Mutex
	inflight chan struct{} // non-nil while a regeneration runs
	feed     []cache.Item
	agenda   Agenda
	derived  bool
	lastErr  error
}

func NewFeedService(tasks TaskStore, appts AppointmentStore, overlay *cache.ReadState, now func() time.Time) *FeedService {
	if now == nil {
		now = time.Now
	}
	return &FeedService{tasks: tasks, appts: appts, overlay: overlay, now: now}
}

// Load serves the cached feed while it is fresh and regenerates otherwise.
// This is what the periodic tick calls.
func (s *FeedService) Load(ctx context.Context) ([]cache.Item, error) {
	if items := s.overlay.Load(); items != nil {
		s.mu.Lock()
		s.feed = items
		s.mu.Unlock()
		return items, nil
	}
	return s.Refresh(ctx)
}

// Refresh forces a full regeneration, bypassing the cache TTL. A call made
// while another regeneration is pending is coalesced onto it.
func (s *FeedService) Refresh(ctx context.Context) ([]cache.Item, error) {
	s.mu.Lock()
	if s.inflight != nil {
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.feed, s.lastErr
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	done := make(chan struct{})
	s.inflight = done
	s.mu.Unlock()

	feed, agenda, err := s.regenerate(ctx)

	s.mu.Lock()
	if err == nil {
		s.feed = feed
		s.agenda = agenda
		s.derived = true
	}
	s.lastErr = err
	s.inflight = nil
	close(done)
	s.mu.Unlock()

	return feed, err
}

// Feed returns the last merged feed without touching the store.
func (s *FeedService) Feed() []cache.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

// Agenda returns the classified buckets from the last regeneration pass,
// running one first if none has completed yet. Buckets share the feed's
// freshness: they are at most one cache TTL old.
func (s *FeedService) Agenda(ctx context.Context) (Agenda, error) {
	if _, err := s.Load(ctx); err != nil {
		return Agenda{}, err
	}

	s.mu.Lock()
	derived := s.derived
	s.mu.Unlock()
	if !derived {
		// The overlay was fresh from a previous run but this process has
		// not classified anything yet.
		if _, err := s.Refresh(ctx); err != nil {
			return Agenda{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agenda, nil
}

// Overlay exposes the read-state cache for mark-read/remove calls.
func (s *FeedService) Overlay() *cache.ReadState {
	return s.overlay
}

// regenerate performs one pass over a single (now, snapshot) pair. On store
// failure nothing is merged into the overlay, so previously cached state
// survives for the recovery tick.
func (s *FeedService) regenerate(ctx context.Context) ([]cache.Item, Agenda, error) {
	now := s.now()

	tasks, err := s.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, Agenda{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	appts, err := s.appts.List(ctx, repository.AppointmentFilter{})
	if err != nil {
		return nil, Agenda{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	feed := s.overlay.Merge(DeriveNotifications(tasks, appts, now))
	return feed, BuildAgenda(tasks, appts, now), nil
}
