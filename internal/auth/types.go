package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roadwatch.org/internal/jurisdiction"
)

var (
	ErrNotFound     = errors.New("auth: not found")
	ErrConflict     = errors.New("auth: already exists")
	ErrInvalidInput = errors.New("auth: invalid input")
	ErrUnauthorized = errors.New("auth: unauthorized")
)

// Profile is an authority account. It is created empty at sign-up and gains
// its jurisdiction exactly once when onboarding completes; afterwards only
// full_name is self-editable (scope fields change via administrative
// correction only).
type Profile struct {
	ID            string                     `json:"id"`
	Email         string                     `json:"email"`
	FullName      string                     `json:"full_name,omitempty"`
	AuthorityType jurisdiction.AuthorityType `json:"authority_type,omitempty"`
	Organization  string                     `json:"organization,omitempty"`
	State         string                     `json:"state,omitempty"`
	District      string                     `json:"district,omitempty"`
	Municipality  string                     `json:"municipality,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// Jurisdiction returns the resolver input for this profile.
func (p Profile) Jurisdiction() jurisdiction.Profile {
	return jurisdiction.Profile{
		AuthorityType: p.AuthorityType,
		Organization:  p.Organization,
		State:         p.State,
		District:      p.District,
		Municipality:  p.Municipality,
	}
}

// JurisdictionUpdate assigns an authority type together with exactly the one
// scope column valid for it. Constructed only via NewJurisdictionUpdate so
// the profile invariant (type implies matching scope field) holds by
// construction rather than by string comparison at every call site.
type JurisdictionUpdate struct {
	AuthorityType jurisdiction.AuthorityType
	Organization  string

	state        string
	district     string
	municipality string
}

// NewJurisdictionUpdate validates the authority type and routes the
// organization value into the matching scope column. Federal accounts keep
// the Autobahn region in Organization; admin accounts carry no scope column.
func NewJurisdictionUpdate(rawType, organization string) (JurisdictionUpdate, error) {
	t, err := jurisdiction.ParseAuthorityType(rawType)
	if err != nil {
		return JurisdictionUpdate{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	organization = strings.TrimSpace(organization)
	if t != jurisdiction.AuthorityAdmin && organization == "" {
		return JurisdictionUpdate{}, fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}

	upd := JurisdictionUpdate{AuthorityType: t, Organization: organization}
	switch t {
	case jurisdiction.AuthorityState:
		upd.state = organization
	case jurisdiction.AuthorityDistrict:
		upd.district = organization
	case jurisdiction.AuthorityMunicipal:
		upd.municipality = organization
	}
	return upd, nil
}

// ScopeColumns returns the state/district/municipality values to persist.
func (u JurisdictionUpdate) ScopeColumns() (state, district, municipality string) {
	return u.state, u.district, u.municipality
}

// Apply writes the update onto a profile.
func (u JurisdictionUpdate) Apply(p *Profile) {
	p.AuthorityType = u.AuthorityType
	p.Organization = u.Organization
	p.State = u.state
	p.District = u.district
	p.Municipality = u.municipality
}

// ProfileStore persists authority profiles.
type ProfileStore interface {
	Create(ctx context.Context, p *Profile, passwordHash string) error
	Find(ctx context.Context, id string) (Profile, error)
	// FindByEmail returns the profile and its password hash.
	FindByEmail(ctx context.Context, email string) (Profile, string, error)
	UpdateFullName(ctx context.Context, id, fullName string) error
	SetJurisdiction(ctx context.Context, id string, upd JurisdictionUpdate) error
}

// RoleStore persists role assignments separately from profiles. Roles drive
// access-control checks; profile fields drive display and business logic.
type RoleStore interface {
	Assign(ctx context.Context, userID string, role jurisdiction.AuthorityType) error
	ListByUser(ctx context.Context, userID string) ([]jurisdiction.AuthorityType, error)
}
