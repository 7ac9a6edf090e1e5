package stream

import (
	"context"
	"sync"
	"time"

	"roadwatch.org/internal/damage"
	"roadwatch.org/internal/jurisdiction"
)

// DamageEvent describes one record-level change for live map clients. The
// administrative fields ride along so delivery can honour the subscriber's
// scope.
type DamageEvent struct {
	Action         string            `json:"action"` // corrected | fixed | added
	RecordID       string            `json:"record_id"`
	Type           damage.DamageType `json:"damage_type"`
	Severity       damage.Severity   `json:"severity"`
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	RoadName       string            `json:"road_name,omitempty"`
	City           string            `json:"city,omitempty"`
	State          string            `json:"state,omitempty"`
	District       string            `json:"district,omitempty"`
	Municipality   string            `json:"municipality,omitempty"`
	AutobahnRegion string            `json:"autobahn_region,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// ScopeValues exposes the administrative columns for policy evaluation.
func (e DamageEvent) ScopeValues() jurisdiction.ScopeValues {
	return jurisdiction.ScopeValues{
		AutobahnRegion: e.AutobahnRegion,
		State:          e.State,
		District:       e.District,
		Municipality:   e.Municipality,
	}
}

// EventFor builds the stream payload for a record change.
func EventFor(action string, rec damage.Record) DamageEvent {
	return DamageEvent{
		Action:         action,
		RecordID:       rec.ID,
		Type:           rec.DamageType,
		Severity:       rec.Severity,
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		RoadName:       rec.RoadName,
		City:           rec.City,
		State:          rec.State,
		District:       rec.District,
		Municipality:   rec.Municipality,
		AutobahnRegion: rec.AutobahnRegion,
		Timestamp:      time.Now().UTC(),
	}
}

// Stream fan-outs damage events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan DamageEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan DamageEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan DamageEvent {
	ch := make(chan DamageEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt DamageEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
