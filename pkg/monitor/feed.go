package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of events a Feed keeps.
const DefaultLimit = 100

// Stats are running totals since the feed was created. They count every
// accepted event, including those since evicted.
type Stats struct {
	Total   int `json:"total"`
	Attacks int `json:"attacks"`
	Metrics int `json:"metrics"`
	// Logs counts both log and status events.
	Logs int `json:"logs"`
}

// Feed keeps the most recent events newest first. It is safe for
// concurrent use.
type Feed struct {
	mu     sync.Mutex
	limit  int
	events []Event
	stats  Stats
	now    func() time.Time
}

// NewFeed returns a feed keeping at most limit events. A limit of zero or
// less uses DefaultLimit.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Feed{limit: limit, now: time.Now}
}

// Push accepts a live-data event. Missing id and timestamp fields are
// filled in. It returns the stored copy.
func (f *Feed) Push(e Event) Event {
	return f.push(e.Clone())
}

// PushAttack accepts an attack-update event, which is always an attack
// regardless of its type field.
func (f *Feed) PushAttack(e Event) Event {
	stored := e.Clone()
	stored["type"] = "attack"
	return f.push(stored)
}

func (f *Feed) push(e Event) Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	if e.ID() == "" {
		e["id"] = uuid.NewString()
	}
	if _, ok := e["timestamp"]; !ok {
		e["timestamp"] = f.now().UTC().Format(time.RFC3339Nano)
	}

	f.events = append([]Event{e}, f.events...)
	if len(f.events) > f.limit {
		f.events = f.events[:f.limit]
	}

	f.stats.Total++
	switch e.Type() {
	case "attack":
		f.stats.Attacks++
	case "metric":
		f.stats.Metrics++
	case "log", "status":
		f.stats.Logs++
	}
	return e
}

// Events returns the retained events, newest first.
func (f *Feed) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

// Len returns the number of retained events.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Stats returns the running totals.
func (f *Feed) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}
