// Package monitor holds the live system feed: arbitrary JSON events pushed
// by the defense backend, a bounded newest-first [Feed] with running
// totals, and a websocket [Hub] that fans events out to connected pages.
package monitor

import (
	"strings"
	"time"
)

// Channel names carried in hub messages.
const (
	KindLiveData     = "live-data"
	KindAttackUpdate = "attack-update"
	KindConnected    = "connected"
)

// Event is one feed entry. Producers may send any JSON object; only type,
// severity, timestamp and id have meaning here.
type Event map[string]any

func (e Event) str(key string) string {
	s, _ := e[key].(string)
	return s
}

// Type returns the lowercased event type, or "" if absent.
func (e Event) Type() string { return strings.ToLower(e.str("type")) }

// Severity returns the lowercased severity, or "" if absent.
func (e Event) Severity() string { return strings.ToLower(e.str("severity")) }

// ID returns the event id, or "" if absent.
func (e Event) ID() string { return e.str("id") }

// Timestamp parses the timestamp field. RFC 3339 strings and Unix
// milliseconds are accepted; anything else yields the zero time.
func (e Event) Timestamp() time.Time {
	switch v := e["timestamp"].(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	case float64:
		return time.UnixMilli(int64(v))
	case int64:
		return time.UnixMilli(v)
	case int:
		return time.UnixMilli(int64(v))
	}
	return time.Time{}
}

// Clone returns a shallow copy.
func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// TypeClass maps an event type to its display class.
func TypeClass(eventType string) string {
	switch t := strings.ToLower(eventType); t {
	case "attack", "metric", "log", "status", "alert":
		return "type-" + t
	}
	return "type-default"
}

// SeverityClass maps a severity to its display class. Unknown or missing
// severities render as medium.
func SeverityClass(severity string) string {
	switch s := strings.ToLower(severity); s {
	case "critical", "high", "medium", "low", "info":
		return "severity-" + s
	}
	return "severity-medium"
}

// FormatTime renders t as a wall-clock time of day.
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}
