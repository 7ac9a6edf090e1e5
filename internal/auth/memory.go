package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"roadwatch.org/internal/jurisdiction"
)

// InMemory implements ProfileStore and RoleStore for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	hashes   map[string]string
	byEmail  map[string]string
	roles    map[string][]jurisdiction.AuthorityType
}

// NewInMemory constructs an empty in-memory auth store.
func NewInMemory() *InMemory {
	return &InMemory{
		profiles: make(map[string]Profile),
		hashes:   make(map[string]string),
		byEmail:  make(map[string]string),
		roles:    make(map[string][]jurisdiction.AuthorityType),
	}
}

func (m *InMemory) Create(_ context.Context, p *Profile, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(p.Email)
	if _, exists := m.byEmail[key]; exists {
		return fmt.Errorf("%w: email %s", ErrConflict, p.Email)
	}
	m.profiles[p.ID] = *p
	m.hashes[p.ID] = passwordHash
	m.byEmail[key] = p.ID
	return nil
}

func (m *InMemory) Find(_ context.Context, id string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return p, nil
}

func (m *InMemory) FindByEmail(_ context.Context, email string) (Profile, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return Profile{}, "", fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	return m.profiles[id], m.hashes[id], nil
}

func (m *InMemory) UpdateFullName(_ context.Context, id, fullName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	p.FullName = fullName
	p.UpdatedAt = time.Now().UTC()
	m.profiles[id] = p
	return nil
}

func (m *InMemory) SetJurisdiction(_ context.Context, id string, upd JurisdictionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	upd.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	m.profiles[id] = p
	return nil
}

func (m *InMemory) Assign(_ context.Context, userID string, role jurisdiction.AuthorityType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.roles[userID] {
		if r == role {
			return nil
		}
	}
	m.roles[userID] = append(m.roles[userID], role)
	return nil
}

func (m *InMemory) ListByUser(_ context.Context, userID string) ([]jurisdiction.AuthorityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]jurisdiction.AuthorityType, len(m.roles[userID]))
	copy(out, m.roles[userID])
	return out, nil
}
