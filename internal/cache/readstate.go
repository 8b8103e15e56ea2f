package cache

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"crm-agenda/internal/model"
)

// TTL is how long a generated feed stays servable from cache. Past it the
// whole overlay is discarded and rebuilt from a full reload.
const TTL = 5 * time.Minute

// Item is a notification plus its read flag from the overlay. The flag is
// never stored on the notification itself; it is applied at merge time.
type Item struct {
	model.Notification
	Read bool `json:"read"`
}

// payload is the serialized overlay: the last generated list, the per-id
// read flags, and the ids the user explicitly dismissed.
type payload struct {
	Notifications []model.Notification `json:"notifications"`
	Read          map[string]bool      `json:"read"`
	Removed       []string             `json:"removed"`
}

// ReadState is the per-user read/dismissal overlay for the notification
// feed, persisted through a KV under the "notifications:{userID}" namespace.
// A corrupted or unparsable payload resets to empty rather than failing.
type ReadState struct {
	mu     sync.Mutex
	kv     KV
	userID string
	now    func() time.Time
}

// NewReadState builds an overlay for userID. A nil now falls back to
// time.Now; tests inject a fixed clock.
func NewReadState(kv KV, userID string, now func() time.Time) *ReadState {
	if now == nil {
		now = time.Now
	}
	return &ReadState{kv: kv, userID: userID, now: now}
}

func (s *ReadState) feedKey() string {
	return "notifications:" + s.userID
}

func (s *ReadState) stampKey() string {
	return "notifications:" + s.userID + ":generatedAt"
}

// Load returns the cached feed with read flags applied, or nil when the
// cache is stale, missing, or corrupt — every nil return means the caller
// must regenerate.
func (s *ReadState) Load() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fresh() {
		return nil
	}
	p := s.load()
	if len(p.Notifications) == 0 {
		return nil
	}
	return s.apply(p)
}

// Merge overlays the cached read flags and removed set onto a freshly
// generated list, persists the result, and stamps it as generated now.
// Cached notifications absent from fresh are dropped: their source item no
// longer qualifies. A stale overlay is discarded entirely first.
func (s *ReadState) Merge(fresh []model.Notification) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := payload{Read: map[string]bool{}}
	if s.fresh() {
		p = s.load()
	}

	removed := make(map[string]bool, len(p.Removed))
	for _, id := range p.Removed {
		removed[id] = true
	}

	next := payload{Read: map[string]bool{}, Removed: p.Removed}
	for _, n := range fresh {
		if removed[n.ID] {
			continue
		}
		next.Notifications = append(next.Notifications, n)
		if p.Read[n.ID] {
			next.Read[n.ID] = true
		}
	}

	s.save(next)
	s.stamp()
	return s.apply(next)
}

// MarkRead flags a single notification as seen and persists immediately.
func (s *ReadState) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load()
	p.Read[id] = true
	s.save(p)
}

// MarkAllRead flags every cached notification as seen.
func (s *ReadState) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load()
	for _, n := range p.Notifications {
		p.Read[n.ID] = true
	}
	s.save(p)
}

// Remove dismisses a notification: it is dropped from the cached list and
// its id is remembered so regeneration does not resurface it.
func (s *ReadState) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load()
	kept := p.Notifications[:0]
	for _, n := range p.Notifications {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	p.Notifications = kept
	for _, existing := range p.Removed {
		if existing == id {
			s.save(p)
			return
		}
	}
	p.Removed = append(p.Removed, id)
	s.save(p)
}

// Unread counts cached notifications not yet marked read.
func (s *ReadState) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load()
	count := 0
	for _, n := range p.Notifications {
		if !p.Read[n.ID] {
			count++
		}
	}
	return count
}

func (s *ReadState) fresh() bool {
	raw, err := s.kv.Get(s.stampKey())
	if err != nil {
		return false
	}
	generatedAt, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return false
	}
	return s.now().Sub(generatedAt) < TTL
}

func (s *ReadState) stamp() {
	_ = s.kv.Set(s.stampKey(), []byte(s.now().Format(time.RFC3339Nano)))
}

func (s *ReadState) load() payload {
	empty := payload{Read: map[string]bool{}}
	raw, err := s.kv.Get(s.feedKey())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			// Unreadable cache degrades to empty, never to a failure.
			_ = s.kv.Delete(s.feedKey())
		}
		return empty
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		_ = s.kv.Delete(s.feedKey())
		return empty
	}
	if p.Read == nil {
		p.Read = map[string]bool{}
	}
	return p
}

func (s *ReadState) save(p payload) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = s.kv.Set(s.feedKey(), raw)
}

func (s *ReadState) apply(p payload) []Item {
	items := make([]Item, 0, len(p.Notifications))
	for _, n := range p.Notifications {
		items = append(items, Item{Notification: n, Read: p.Read[n.ID]})
	}
	return items
}
