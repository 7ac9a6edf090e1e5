package jurisdiction

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
		want    Scope
		wantErr error
	}{
		{
			name:    "admin gets global scope",
			profile: Profile{AuthorityType: AuthorityAdmin},
			want:    Scope{Global: true},
		},
		{
			name:    "federal scoped to autobahn region from organization",
			profile: Profile{AuthorityType: AuthorityFederal, Organization: "Süd"},
			want:    Scope{Field: FieldAutobahnRegion, Value: "Süd"},
		},
		{
			name:    "state scoped to state field",
			profile: Profile{AuthorityType: AuthorityState, State: "Bayern"},
			want:    Scope{Field: FieldState, Value: "Bayern"},
		},
		{
			name:    "district scoped to district field",
			profile: Profile{AuthorityType: AuthorityDistrict, District: "Landkreis München"},
			want:    Scope{Field: FieldDistrict, Value: "Landkreis München"},
		},
		{
			name:    "municipal scoped to municipality field",
			profile: Profile{AuthorityType: AuthorityMunicipal, Municipality: "München"},
			want:    Scope{Field: FieldMunicipality, Value: "München"},
		},
		{
			name:    "missing authority type denies",
			profile: Profile{State: "Bayern"},
			wantErr: ErrNoAuthority,
		},
		{
			name:    "state without state value denies",
			profile: Profile{AuthorityType: AuthorityState},
			wantErr: ErrIncomplete,
		},
		{
			name:    "federal without organization denies",
			profile: Profile{AuthorityType: AuthorityFederal},
			wantErr: ErrIncomplete,
		},
		{
			name:    "unknown authority type denies",
			profile: Profile{AuthorityType: "continental"},
			wantErr: ErrUnknownAuthority,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.profile)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if got != (Scope{}) {
					t.Fatalf("failed resolution must return the zero scope, got %+v", got)
				}
				if got.Allows(ScopeValues{State: "Bayern"}) {
					t.Fatal("zero scope must deny everything")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestScopeAllows(t *testing.T) {
	bayern := ScopeValues{State: "Bayern", District: "München", Municipality: "München"}

	if !GlobalScope().Allows(bayern) {
		t.Fatal("global scope must allow everything")
	}
	if (Scope{}).Allows(bayern) {
		t.Fatal("zero scope must deny")
	}
	if !FieldScope(FieldState, "Bayern").Allows(bayern) {
		t.Fatal("matching state must be allowed")
	}
	if FieldScope(FieldState, "bayern").Allows(bayern) {
		t.Fatal("comparison must be case-sensitive")
	}
	if FieldScope(FieldState, "Brandenburg").Allows(bayern) {
		t.Fatal("non-matching state must be denied")
	}
	if FieldScope(FieldMunicipality, "Köln").Allows(bayern) {
		t.Fatal("non-matching municipality must be denied")
	}
	if FieldScope(FieldState, "").Allows(ScopeValues{}) {
		t.Fatal("scope with empty value must deny even empty record values")
	}
}

func TestParseAuthorityType(t *testing.T) {
	if got, err := ParseAuthorityType("  Federal "); err != nil || got != AuthorityFederal {
		t.Fatalf("expected federal, got %q err=%v", got, err)
	}
	if _, err := ParseAuthorityType("cosmic"); !errors.Is(err, ErrUnknownAuthority) {
		t.Fatalf("expected ErrUnknownAuthority, got %v", err)
	}
}
