package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roadwatch.org/internal/jurisdiction"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	ResetSecretForTests()
	t.Setenv(EnvAuthSecret, strings.Repeat("s", 48))
	t.Cleanup(ResetSecretForTests)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	setTestSecret(t)

	token, expiresAt, err := GenerateToken("user-1", []string{"state"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "state" {
		t.Fatalf("unexpected roles %v", claims.Roles)
	}

	if _, err := ParseToken(token + "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	ResetSecretForTests()
	t.Setenv(EnvAuthSecret, "")
	t.Cleanup(ResetSecretForTests)

	if _, _, err := GenerateToken("user-1", nil, time.Minute); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestNewJurisdictionUpdateRouting(t *testing.T) {
	cases := []struct {
		authorityType string
		organization  string
		wantState     string
		wantDistrict  string
		wantMunicip   string
	}{
		{"federal", "Süd", "", "", ""},
		{"state", "Bayern", "Bayern", "", ""},
		{"district", "Landkreis München", "", "Landkreis München", ""},
		{"municipal", "München", "", "", "München"},
	}
	for _, tc := range cases {
		upd, err := NewJurisdictionUpdate(tc.authorityType, tc.organization)
		if err != nil {
			t.Fatalf("%s: %v", tc.authorityType, err)
		}
		state, district, municipality := upd.ScopeColumns()
		if state != tc.wantState || district != tc.wantDistrict || municipality != tc.wantMunicip {
			t.Fatalf("%s: got (%q, %q, %q)", tc.authorityType, state, district, municipality)
		}
		if upd.Organization != tc.organization {
			t.Fatalf("%s: organization not preserved", tc.authorityType)
		}
	}

	if _, err := NewJurisdictionUpdate("galactic", "X"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}
	if _, err := NewJurisdictionUpdate("state", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty organization, got %v", err)
	}
	if _, err := NewJurisdictionUpdate("admin", ""); err != nil {
		t.Fatalf("admin needs no organization: %v", err)
	}
}

func TestSignUpLoginOnboardingFlow(t *testing.T) {
	setTestSecret(t)
	ctx := context.Background()
	mem := NewInMemory()
	svc := NewService(mem, mem)

	profile, err := svc.SignUp(ctx, "Inspector@Bayern.example ", "hunter2hunter2", "M. Weber")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if profile.Email != "inspector@bayern.example" {
		t.Fatalf("email not normalized: %q", profile.Email)
	}
	if profile.AuthorityType != "" {
		t.Fatalf("fresh profile must have no authority type, got %q", profile.AuthorityType)
	}

	if _, err := svc.SignUp(ctx, "inspector@bayern.example", "hunter2hunter2", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "short@pw.example", "short", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}

	// Before onboarding: login works but the session cannot see data.
	token, _, principal, err := svc.Login(ctx, "inspector@bayern.example", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !principal.IncompleteJurisdiction {
		t.Fatal("expected incomplete jurisdiction before onboarding")
	}
	if principal.Scope.Allows(jurisdiction.ScopeValues{State: "Bayern"}) {
		t.Fatal("unresolved jurisdiction must deny data access")
	}

	if _, _, _, err := svc.Login(ctx, "inspector@bayern.example", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "ghost@nowhere.example", "hunter2hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown email must read as bad credentials, got %v", err)
	}

	updated, err := svc.CompleteOnboarding(ctx, profile.ID, "state", "Bayern")
	if err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	if updated.AuthorityType != jurisdiction.AuthorityState || updated.State != "Bayern" {
		t.Fatalf("unexpected profile after onboarding: %+v", updated)
	}
	if _, err := svc.CompleteOnboarding(ctx, profile.ID, "state", "Bayern"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second onboarding, got %v", err)
	}

	principal, err = svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.IncompleteJurisdiction {
		t.Fatal("jurisdiction should resolve after onboarding")
	}
	if !principal.Scope.Allows(jurisdiction.ScopeValues{State: "Bayern"}) {
		t.Fatal("expected Bayern records to be visible")
	}
	if principal.Scope.Allows(jurisdiction.ScopeValues{State: "Brandenburg"}) {
		t.Fatal("expected Brandenburg records to be hidden")
	}
	if !principal.HasRole("state") {
		t.Fatalf("expected state role, got %v", principal.Roles)
	}
	if principal.IsAdmin() {
		t.Fatal("state authority must not be admin")
	}
}

func TestUpdateFullNameOnly(t *testing.T) {
	setTestSecret(t)
	ctx := context.Background()
	mem := NewInMemory()
	svc := NewService(mem, mem)

	p, err := svc.SignUp(ctx, "clerk@koeln.example", "hunter2hunter2", "Old Name")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.CompleteOnboarding(ctx, p.ID, "municipal", "Köln"); err != nil {
		t.Fatalf("onboarding: %v", err)
	}

	updated, err := svc.UpdateFullName(ctx, p.ID, " New Name ")
	if err != nil {
		t.Fatalf("update full name: %v", err)
	}
	if updated.FullName != "New Name" {
		t.Fatalf("expected trimmed name, got %q", updated.FullName)
	}
	if updated.Municipality != "Köln" {
		t.Fatal("scope fields must survive the profile edit")
	}
	if _, err := svc.UpdateFullName(ctx, p.ID, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestAuthenticateCachesProfile(t *testing.T) {
	setTestSecret(t)
	ctx := context.Background()
	mem := NewInMemory()
	svc := NewService(mem, mem)

	p, err := svc.SignUp(ctx, "fed@bund.example", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.CompleteOnboarding(ctx, p.ID, "federal", "Nord"); err != nil {
		t.Fatalf("onboarding: %v", err)
	}
	token, _, _, err := svc.Login(ctx, "fed@bund.example", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for i := 0; i < 3; i++ {
		principal, err := svc.Authenticate(ctx, token)
		if err != nil {
			t.Fatalf("authenticate %d: %v", i, err)
		}
		want := jurisdiction.FieldScope(jurisdiction.FieldAutobahnRegion, "Nord")
		if principal.Scope != want {
			t.Fatalf("unexpected scope %+v", principal.Scope)
		}
	}
}
