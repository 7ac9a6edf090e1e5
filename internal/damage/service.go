package damage

import (
	"context"
	"sort"
	"sync"
	"time"

	"roadwatch.org/internal/ids"
	"roadwatch.org/internal/jurisdiction"
)

// Service defines damage-record operations. Every operation takes the
// caller's scope and enforces it at the store boundary, on reads and writes
// alike: an authority can neither see nor create nor relocate a record
// outside its own jurisdiction.
type Service interface {
	// List returns records visible under scope, ordered by detected_at
	// descending.
	List(ctx context.Context, scope jurisdiction.Scope) ([]Record, error)
	// Get returns a record by id, or ErrAccessDenied if it exists outside
	// the caller's scope.
	Get(ctx context.Context, scope jurisdiction.Scope, id string) (Record, error)
	// Insert stores a new record. The record's administrative values must
	// fall inside scope.
	Insert(ctx context.Context, scope jurisdiction.Scope, rec Record) (Record, error)
	// SetLocation overwrites the record's geospatial and administrative
	// fields. Both the current record and the new location must fall inside
	// scope.
	SetLocation(ctx context.Context, scope jurisdiction.Scope, id string, loc Location) (Record, error)
}

// InMemory implements Service with in-process concurrency safety.
// Used by tests and local development; the pg store is the durable one.
type InMemory struct {
	mu   sync.RWMutex
	recs map[string]*Record
	now  func() time.Time
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		recs: make(map[string]*Record),
		now:  time.Now,
	}
}

// SetClock overrides the time source used for defaulted detected_at values.
func (s *InMemory) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *InMemory) List(ctx context.Context, scope jurisdiction.Scope) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.recs {
		if !scope.Allows(rec.ScopeValues()) {
			continue
		}
		out = append(out, copyRecord(*rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemory) Get(ctx context.Context, scope jurisdiction.Scope, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !scope.Allows(rec.ScopeValues()) {
		return Record{}, ErrAccessDenied
	}
	return copyRecord(*rec), nil
}

func (s *InMemory) Insert(ctx context.Context, scope jurisdiction.Scope, rec Record) (Record, error) {
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	if !scope.Allows(rec.ScopeValues()) {
		return Record{}, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = ids.New()
	}
	if rec.DetectedAt.IsZero() {
		rec.DetectedAt = s.now().UTC()
	}
	stored := copyRecord(rec)
	s.recs[stored.ID] = &stored
	return copyRecord(stored), nil
}

func (s *InMemory) SetLocation(ctx context.Context, scope jurisdiction.Scope, id string, loc Location) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !scope.Allows(rec.ScopeValues()) || !scope.Allows(loc.ScopeValues()) {
		return Record{}, ErrAccessDenied
	}
	loc.ApplyTo(rec)
	return copyRecord(*rec), nil
}

func copyRecord(r Record) Record {
	if r.Metadata != nil {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		r.Metadata = meta
	}
	return r
}
