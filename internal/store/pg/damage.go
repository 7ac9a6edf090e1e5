package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roadwatch.org/internal/damage"
	"roadwatch.org/internal/ids"
	"roadwatch.org/internal/jurisdiction"
)

var _ damage.Service = (*Store)(nil)

// scopeColumns whitelists the administrative columns a scope may filter on.
// Scope fields arrive from resolved profiles, never raw user input, but the
// whitelist keeps column names out of the SQL-building path entirely.
var scopeColumns = map[jurisdiction.ScopeField]string{
	jurisdiction.FieldAutobahnRegion: "autobahn_region",
	jurisdiction.FieldState:          "state",
	jurisdiction.FieldDistrict:       "district",
	jurisdiction.FieldMunicipality:   "municipality",
}

const damageColumns = `
	id, damage_type, severity, latitude, longitude,
	coalesce(road_name,''), coalesce(road_category,''), coalesce(city,''),
	coalesce(state,''), coalesce(district,''), coalesce(municipality,''),
	coalesce(autobahn_region,''), confidence_score, detected_at,
	coalesce(image_url,''), metadata`

func (s *Store) List(ctx context.Context, scope jurisdiction.Scope) ([]damage.Record, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	if !scope.Global && !scope.Restricted() {
		// fail closed without touching the database
		return []damage.Record{}, nil
	}

	query := `select` + damageColumns + `
		from road_damage`
	var args []any
	if scope.Restricted() {
		col, ok := scopeColumns[scope.Field]
		if !ok {
			return []damage.Record{}, nil
		}
		query += fmt.Sprintf(" where %s = $1", col)
		args = append(args, scope.Value)
	}
	query += " order by detected_at desc, id desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []damage.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, scope jurisdiction.Scope, id string) (damage.Record, error) {
	if s.db == nil {
		return damage.Record{}, errors.New("database connection unavailable")
	}

	row := s.db.QueryRowContext(ctx, `select`+damageColumns+`
		from road_damage where id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return damage.Record{}, damage.ErrNotFound
	}
	if err != nil {
		return damage.Record{}, err
	}
	if !scope.Allows(rec.ScopeValues()) {
		return damage.Record{}, damage.ErrAccessDenied
	}
	return rec, nil
}

func (s *Store) Insert(ctx context.Context, scope jurisdiction.Scope, rec damage.Record) (damage.Record, error) {
	if s.db == nil {
		return damage.Record{}, errors.New("database connection unavailable")
	}
	if err := rec.Validate(); err != nil {
		return damage.Record{}, err
	}
	if !scope.Allows(rec.ScopeValues()) {
		return damage.Record{}, damage.ErrAccessDenied
	}

	if rec.ID == "" {
		rec.ID = ids.New()
	}
	if rec.DetectedAt.IsZero() {
		rec.DetectedAt = time.Now().UTC()
	}
	metaJSON := []byte("{}")
	if len(rec.Metadata) > 0 {
		raw, err := json.Marshal(rec.Metadata)
		if err != nil {
			return damage.Record{}, fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = raw
	}

	_, err := s.db.ExecContext(ctx, `
		insert into road_damage (
			id, damage_type, severity, latitude, longitude,
			road_name, road_category, city, state, district, municipality,
			autobahn_region, confidence_score, detected_at, image_url, metadata
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, rec.ID, string(rec.DamageType), string(rec.Severity), rec.Latitude, rec.Longitude,
		nullIfEmpty(rec.RoadName), nullIfEmpty(rec.RoadCategory), nullIfEmpty(rec.City),
		nullIfEmpty(rec.State), nullIfEmpty(rec.District), nullIfEmpty(rec.Municipality),
		nullIfEmpty(rec.AutobahnRegion), rec.ConfidenceScore, rec.DetectedAt,
		nullIfEmpty(rec.ImageURL), metaJSON)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return damage.Record{}, fmt.Errorf("%w: record %s", damage.ErrInvalidInput, rec.ID)
		}
		return damage.Record{}, err
	}
	return rec, nil
}

func (s *Store) SetLocation(ctx context.Context, scope jurisdiction.Scope, id string, loc damage.Location) (damage.Record, error) {
	if s.db == nil {
		return damage.Record{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return damage.Record{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `select`+damageColumns+`
		from road_damage where id = $1 for update`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return damage.Record{}, damage.ErrNotFound
	}
	if err != nil {
		return damage.Record{}, err
	}
	// Both the record's current placement and its destination must be in
	// scope; otherwise a caller could move records into or out of foreign
	// jurisdictions.
	if !scope.Allows(rec.ScopeValues()) || !scope.Allows(loc.ScopeValues()) {
		return damage.Record{}, damage.ErrAccessDenied
	}

	if _, err := tx.ExecContext(ctx, `
		update road_damage set
			latitude = $2, longitude = $3, road_name = $4, city = $5,
			state = $6, district = $7, municipality = $8,
			road_category = $9, autobahn_region = $10
		where id = $1
	`, id, loc.Latitude, loc.Longitude, nullIfEmpty(loc.RoadName), nullIfEmpty(loc.City),
		nullIfEmpty(loc.State), nullIfEmpty(loc.District), nullIfEmpty(loc.Municipality),
		nullIfEmpty(loc.RoadCategory), nullIfEmpty(loc.AutobahnRegion)); err != nil {
		return damage.Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return damage.Record{}, err
	}

	loc.ApplyTo(&rec)
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (damage.Record, error) {
	var (
		rec     damage.Record
		rawMeta []byte
	)
	err := row.Scan(
		&rec.ID, &rec.DamageType, &rec.Severity, &rec.Latitude, &rec.Longitude,
		&rec.RoadName, &rec.RoadCategory, &rec.City,
		&rec.State, &rec.District, &rec.Municipality,
		&rec.AutobahnRegion, &rec.ConfidenceScore, &rec.DetectedAt,
		&rec.ImageURL, &rawMeta,
	)
	if err != nil {
		return damage.Record{}, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &rec.Metadata); err != nil {
			return damage.Record{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return rec, nil
}
