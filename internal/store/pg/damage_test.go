package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"roadwatch.org/internal/damage"
	"roadwatch.org/internal/jurisdiction"
)

var damageRows = []string{
	"id", "damage_type", "severity", "latitude", "longitude",
	"road_name", "road_category", "city",
	"state", "district", "municipality",
	"autobahn_region", "confidence_score", "detected_at",
	"image_url", "metadata",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestListRestrictedScopeFiltersByColumn(t *testing.T) {
	store, mock := newMockStore(t)
	detected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`where state = \$1`).
		WithArgs("Bayern").
		WillReturnRows(sqlmock.NewRows(damageRows).AddRow(
			"rec-1", "pothole", "high", 48.15, 11.58,
			"Leopoldstraße", "municipal", "München",
			"Bayern", "München", "München",
			"", 91.5, detected,
			"/images/sample-pothole.jpg", []byte(`{"subtype":"fatigue"}`),
		))

	recs, err := store.List(context.Background(), jurisdiction.FieldScope(jurisdiction.FieldState, "Bayern"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ID != "rec-1" || rec.DamageType != damage.Pothole || rec.State != "Bayern" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Metadata["subtype"] != "fatigue" {
		t.Fatalf("metadata not decoded: %+v", rec.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListGlobalScopeHasNoWhereClause(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`from road_damage\s+order by detected_at desc`).
		WillReturnRows(sqlmock.NewRows(damageRows))

	recs, err := store.List(context.Background(), jurisdiction.GlobalScope())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result, got %d", len(recs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListZeroScopeSkipsDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	recs, err := store.List(context.Background(), jurisdiction.Scope{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("zero scope must return nothing, got %d", len(recs))
	}
	// no query expected at all
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOutOfScopeIsAccessDenied(t *testing.T) {
	store, mock := newMockStore(t)
	detected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`from road_damage where id = \$1`).
		WithArgs("rec-k").
		WillReturnRows(sqlmock.NewRows(damageRows).AddRow(
			"rec-k", "crack", "medium", 50.93, 6.96,
			"Hohe Straße", "municipal", "Köln",
			"Nordrhein-Westfalen", "Köln", "Köln",
			"", 84.0, detected,
			"", []byte(`{}`),
		))

	scope := jurisdiction.FieldScope(jurisdiction.FieldMunicipality, "München")
	if _, err := store.Get(context.Background(), scope, "rec-k"); !errors.Is(err, damage.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestGetMissingRecord(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`from road_damage where id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(damageRows))

	if _, err := store.Get(context.Background(), jurisdiction.GlobalScope(), "nope"); !errors.Is(err, damage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertEnforcesScopeBeforeWriting(t *testing.T) {
	store, mock := newMockStore(t)

	rec := damage.Record{
		DamageType:      damage.Pothole,
		Severity:        damage.SeverityLow,
		Latitude:        50.9,
		Longitude:       6.95,
		Municipality:    "Köln",
		ConfidenceScore: 80,
	}
	scope := jurisdiction.FieldScope(jurisdiction.FieldMunicipality, "München")
	if _, err := store.Insert(context.Background(), scope, rec); !errors.Is(err, damage.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	// write must be rejected before any SQL runs
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInsertWritesRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`insert into road_damage`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := damage.Record{
		DamageType:      damage.Crack,
		Severity:        damage.SeverityMedium,
		Latitude:        52.5,
		Longitude:       13.4,
		State:           "Berlin",
		ConfidenceScore: 85,
	}
	stored, err := store.Insert(context.Background(), jurisdiction.GlobalScope(), rec)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.ID == "" || stored.DetectedAt.IsZero() {
		t.Fatalf("expected defaulted id and detected_at, got %+v", stored)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetLocationOutOfScopeRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	detected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`from road_damage where id = \$1 for update`).
		WithArgs("rec-k").
		WillReturnRows(sqlmock.NewRows(damageRows).AddRow(
			"rec-k", "crack", "medium", 50.93, 6.96,
			"Hohe Straße", "municipal", "Köln",
			"Nordrhein-Westfalen", "Köln", "Köln",
			"", 84.0, detected,
			"", []byte(`{}`),
		))
	mock.ExpectRollback()

	scope := jurisdiction.FieldScope(jurisdiction.FieldMunicipality, "München")
	loc := damage.Location{Latitude: 48.15, Longitude: 11.58, Municipality: "München", State: "Bayern"}
	if _, err := store.SetLocation(context.Background(), scope, "rec-k", loc); !errors.Is(err, damage.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetLocationUpdatesRow(t *testing.T) {
	store, mock := newMockStore(t)
	detected := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`from road_damage where id = \$1 for update`).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows(damageRows).AddRow(
			"rec-1", "pothole", "high", 49.6483, 11.0241,
			"", "autobahn", "Baiersdorf",
			"Bayern", "Landkreis Erlangen-Höchstadt", "Baiersdorf",
			"Süd", 91.0, detected,
			"", []byte(`{}`),
		))
	mock.ExpectExec(`update road_damage set`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loc := damage.Location{
		Latitude:       49.64662,
		Longitude:      11.02193,
		RoadName:       "A 73",
		City:           "Baiersdorf",
		State:          "Bayern",
		District:       "Landkreis Erlangen-Höchstadt",
		Municipality:   "Baiersdorf",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Süd",
	}
	rec, err := store.SetLocation(context.Background(), jurisdiction.GlobalScope(), "rec-1", loc)
	if err != nil {
		t.Fatalf("set location: %v", err)
	}
	if !loc.AppliedTo(rec) {
		t.Fatalf("location not applied to returned record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
