package jurisdiction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAuthority is returned when a profile has no authority type yet
	// (onboarding not completed). Callers must treat this as "no access".
	ErrNoAuthority = errors.New("jurisdiction: authority type not set")

	// ErrIncomplete is returned when the authority type is set but the
	// matching scope field is empty. This is a data-entry defect the UI
	// should surface for remediation, not silently widen or deny.
	ErrIncomplete = errors.New("jurisdiction: incomplete jurisdiction")

	ErrUnknownAuthority = errors.New("jurisdiction: unknown authority type")
)

// AuthorityType identifies the level of road administration an account
// belongs to.
type AuthorityType string

const (
	AuthorityFederal   AuthorityType = "federal"
	AuthorityState     AuthorityType = "state"
	AuthorityDistrict  AuthorityType = "district"
	AuthorityMunicipal AuthorityType = "municipal"
	AuthorityAdmin     AuthorityType = "admin"
)

// ParseAuthorityType normalizes and validates a raw authority type string.
func ParseAuthorityType(raw string) (AuthorityType, error) {
	t := AuthorityType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case AuthorityFederal, AuthorityState, AuthorityDistrict, AuthorityMunicipal, AuthorityAdmin:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAuthority, raw)
}

// ScopeField names the damage-record column a scope matches against. The
// constants double as column names in the record store.
type ScopeField string

const (
	FieldAutobahnRegion ScopeField = "autobahn_region"
	FieldState          ScopeField = "state"
	FieldDistrict       ScopeField = "district"
	FieldMunicipality   ScopeField = "municipality"
)

// Profile is the slice of an authority profile the resolver needs.
// AuthorityType is empty until sign-up completes.
type Profile struct {
	AuthorityType AuthorityType
	Organization  string
	State         string
	District      string
	Municipality  string
}

// Scope restricts which damage records an account may see and mutate.
// The zero value denies everything (fail-closed).
type Scope struct {
	Global bool
	Field  ScopeField
	Value  string
}

// GlobalScope returns the unrestricted scope used by administrators and by
// out-of-band maintenance such as reconciliation.
func GlobalScope() Scope { return Scope{Global: true} }

// FieldScope builds a scope matching a single administrative column. It is
// the only way to construct a restricted scope, which keeps the "set the
// right field for the right authority" decision in one place.
func FieldScope(field ScopeField, value string) Scope {
	return Scope{Field: field, Value: value}
}

// Restricted reports whether the scope constrains results to a single
// administrative value.
func (s Scope) Restricted() bool { return !s.Global && s.Field != "" && s.Value != "" }

// Resolve derives the access scope for a profile.
//
// Admins get the global scope. Federal accounts are scoped to the Autobahn
// region named by their organization. State, district and municipal accounts
// are scoped to the matching profile field. A profile without an authority
// type resolves to the zero scope with ErrNoAuthority; a set type whose
// scope field is empty resolves to the zero scope with ErrIncomplete.
func Resolve(p Profile) (Scope, error) {
	switch p.AuthorityType {
	case "":
		return Scope{}, ErrNoAuthority
	case AuthorityAdmin:
		return GlobalScope(), nil
	case AuthorityFederal:
		if strings.TrimSpace(p.Organization) == "" {
			return Scope{}, fmt.Errorf("%w: federal profile missing autobahn region", ErrIncomplete)
		}
		return FieldScope(FieldAutobahnRegion, p.Organization), nil
	case AuthorityState:
		if strings.TrimSpace(p.State) == "" {
			return Scope{}, fmt.Errorf("%w: state profile missing state", ErrIncomplete)
		}
		return FieldScope(FieldState, p.State), nil
	case AuthorityDistrict:
		if strings.TrimSpace(p.District) == "" {
			return Scope{}, fmt.Errorf("%w: district profile missing district", ErrIncomplete)
		}
		return FieldScope(FieldDistrict, p.District), nil
	case AuthorityMunicipal:
		if strings.TrimSpace(p.Municipality) == "" {
			return Scope{}, fmt.Errorf("%w: municipal profile missing municipality", ErrIncomplete)
		}
		return FieldScope(FieldMunicipality, p.Municipality), nil
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrUnknownAuthority, p.AuthorityType)
	}
}

// ScopeValues carries the administrative columns of a damage record for
// evaluation. Values are compared exactly and case-sensitively; string
// canonicalization is reconciliation's job, not the evaluator's.
type ScopeValues struct {
	AutobahnRegion string
	State          string
	District       string
	Municipality   string
}

// Get returns the value for the given scope field.
func (v ScopeValues) Get(field ScopeField) string {
	switch field {
	case FieldAutobahnRegion:
		return v.AutobahnRegion
	case FieldState:
		return v.State
	case FieldDistrict:
		return v.District
	case FieldMunicipality:
		return v.Municipality
	}
	return ""
}

// Allows reports whether a record with the given administrative values is
// visible and mutable under the scope. It is pure: safe to call per row on
// large result sets, and evaluated identically on read and write paths.
func (s Scope) Allows(v ScopeValues) bool {
	if s.Global {
		return true
	}
	if !s.Restricted() {
		// zero or malformed scope: fail closed
		return false
	}
	return v.Get(s.Field) == s.Value
}
