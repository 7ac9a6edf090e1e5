package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"roadwatch.org/internal/jurisdiction"
	"roadwatch.org/internal/obs"
)

const (
	profileCacheTTL   = time.Minute
	profileCacheSweep = 5 * time.Minute
)

// Service implements sign-up, onboarding, login and session authentication
// over pluggable profile/role stores.
type Service struct {
	profiles ProfileStore
	roles    RoleStore
	cache    *gocache.Cache
	tokenTTL time.Duration
	now      func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service.
func NewService(profiles ProfileStore, roles RoleStore, opts ...ServiceOption) *Service {
	s := &Service{
		profiles: profiles,
		roles:    roles,
		cache:    gocache.New(profileCacheTTL, profileCacheSweep),
		tokenTTL: 15 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp registers a new authority account. The account starts without a
// jurisdiction and cannot see any records until onboarding completes.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || !strings.Contains(email, "@") {
		return Profile{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if len(password) < 8 {
		return Profile{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	// Profiles use UUIDs; damage records use ULIDs for sortable keys.
	p := Profile{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Create(ctx, &p, hash); err != nil {
		return Profile{}, err
	}

	obs.LogEvent(map[string]any{"msg": "profile_created", "user_id": p.ID})
	return p, nil
}

// CompleteOnboarding assigns the authority type and scope organization to a
// freshly registered profile, and grants the matching role. It refuses to
// run twice; jurisdiction changes after onboarding are administrative.
func (s *Service) CompleteOnboarding(ctx context.Context, userID, authorityType, organization string) (Profile, error) {
	p, err := s.profiles.Find(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if p.AuthorityType != "" {
		return Profile{}, fmt.Errorf("%w: onboarding already completed", ErrConflict)
	}

	upd, err := NewJurisdictionUpdate(authorityType, organization)
	if err != nil {
		return Profile{}, err
	}
	if err := s.profiles.SetJurisdiction(ctx, userID, upd); err != nil {
		return Profile{}, err
	}
	if err := s.roles.Assign(ctx, userID, upd.AuthorityType); err != nil {
		return Profile{}, err
	}

	upd.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	s.cache.Delete(userID)

	obs.LogEvent(map[string]any{
		"msg":            "onboarding_complete",
		"user_id":        userID,
		"authority_type": string(upd.AuthorityType),
	})
	return p, nil
}

// Login verifies credentials and mints a session token carrying the user's
// roles.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, hash, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, Principal{}, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
		}
		return "", time.Time{}, Principal{}, err
	}
	if err := VerifyPassword(hash, password); err != nil {
		return "", time.Time{}, Principal{}, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}

	principal, err := s.principalFor(ctx, p)
	if err != nil {
		return "", time.Time{}, Principal{}, err
	}

	token, expiresAt, err := GenerateToken(p.ID, principal.Roles, s.tokenTTL)
	if err != nil {
		return "", time.Time{}, Principal{}, err
	}

	obs.LogEvent(map[string]any{"msg": "login", "user_id": p.ID})
	return token, expiresAt, principal, nil
}

// Authenticate resolves a bearer token to a principal. Profiles are cached
// briefly so every request does not hit the store.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return Principal{}, err
	}

	p, err := s.profile(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		return Principal{}, err
	}
	return s.principalFor(ctx, p)
}

// Profile returns the account for the given user.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	return s.profiles.Find(ctx, userID)
}

// UpdateFullName is the only self-service profile mutation.
func (s *Service) UpdateFullName(ctx context.Context, userID, fullName string) (Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Profile{}, fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if err := s.profiles.UpdateFullName(ctx, userID, fullName); err != nil {
		return Profile{}, err
	}
	s.cache.Delete(userID)
	return s.profiles.Find(ctx, userID)
}

// principalFor builds the request principal. Jurisdiction resolution
// failures do not fail authentication; they yield a deny-all scope.
func (s *Service) principalFor(ctx context.Context, p Profile) (Principal, error) {
	roles, err := s.roles.ListByUser(ctx, p.ID)
	if err != nil {
		return Principal{}, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	principal := Principal{UserID: p.ID, Email: p.Email, Roles: names}
	scope, err := jurisdiction.Resolve(p.Jurisdiction())
	if err != nil {
		principal.IncompleteJurisdiction = true
		obs.LogEvent(map[string]any{
			"msg":     "jurisdiction_unresolved",
			"level":   "warn",
			"user_id": p.ID,
			"error":   err.Error(),
		})
		return principal, nil
	}
	principal.Scope = scope
	return principal, nil
}

func (s *Service) profile(ctx context.Context, userID string) (Profile, error) {
	if cached, ok := s.cache.Get(userID); ok {
		if p, ok := cached.(Profile); ok {
			return p, nil
		}
	}
	p, err := s.profiles.Find(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	s.cache.SetDefault(userID, p)
	return p, nil
}
