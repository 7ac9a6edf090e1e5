package auth

import (
	"context"

	"roadwatch.org/internal/jurisdiction"
)

// Principal is the authenticated caller attached to a request context. Its
// zero-value Scope denies all data access, so a principal whose profile has
// not completed onboarding can hold a valid session without seeing records.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
	Scope  jurisdiction.Scope

	// IncompleteJurisdiction is set when the profile exists but its
	// jurisdiction could not be resolved. The session stays valid; data
	// access is denied until onboarding or an administrative fix.
	IncompleteJurisdiction bool
}

// HasRole reports whether the principal carries the named role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal may invoke administrative
// operations such as reconciliation.
func (p Principal) IsAdmin() bool {
	return p.HasRole(string(jurisdiction.AuthorityAdmin))
}

type principalKey struct{}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal, if any, from the context.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
