package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"roadwatch.org/internal/auth"
	"roadwatch.org/internal/jurisdiction"
)

func TestCreateProfileMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`insert into profiles`).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	p := auth.Profile{ID: "u-1", Email: "dup@example.org"}
	if err := store.Create(context.Background(), &p, "hash"); !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSetJurisdictionRoutesScopeColumns(t *testing.T) {
	store, mock := newMockStore(t)

	upd, err := auth.NewJurisdictionUpdate("municipal", "München")
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	mock.ExpectExec(`update profiles set`).
		WithArgs("u-1", "municipal", "München", "", "", "München").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetJurisdiction(context.Background(), "u-1", upd); err != nil {
		t.Fatalf("set jurisdiction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetJurisdictionMissingProfile(t *testing.T) {
	store, mock := newMockStore(t)

	upd, err := auth.NewJurisdictionUpdate("state", "Bayern")
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	mock.ExpectExec(`update profiles set`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SetJurisdiction(context.Background(), "ghost", upd); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByEmailReturnsHash(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	cols := []string{
		"id", "email", "full_name", "authority_type",
		"organization", "state", "district",
		"municipality", "created_at", "updated_at", "password_hash",
	}
	mock.ExpectQuery(`from profiles where lower\(email\) = lower\(\$1\)`).
		WithArgs("clerk@example.org").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"u-1", "clerk@example.org", "Clerk", "municipal",
			"Köln", "", "",
			"Köln", now, now, "bcrypt-hash",
		))

	p, hash, err := store.FindByEmail(context.Background(), "clerk@example.org")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if hash != "bcrypt-hash" {
		t.Fatalf("unexpected hash %q", hash)
	}
	if p.AuthorityType != jurisdiction.AuthorityMunicipal || p.Municipality != "Köln" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestAssignRoleMapsForeignKeyViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`insert into user_roles`).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	err := store.Assign(context.Background(), "ghost", jurisdiction.AuthorityAdmin)
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
