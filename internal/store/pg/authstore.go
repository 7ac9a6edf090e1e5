package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roadwatch.org/internal/auth"
	"roadwatch.org/internal/jurisdiction"
)

var (
	_ auth.ProfileStore = (*Store)(nil)
	_ auth.RoleStore    = (*Store)(nil)
)

const profileColumns = `
	id, email, coalesce(full_name,''), coalesce(authority_type,''),
	coalesce(organization,''), coalesce(state,''), coalesce(district,''),
	coalesce(municipality,''), created_at, updated_at`

func (s *Store) Create(ctx context.Context, p *auth.Profile, passwordHash string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	err := s.db.QueryRowContext(ctx, `
		insert into profiles (id, email, password_hash, full_name)
		values ($1, $2, $3, nullif($4,''))
		returning created_at, updated_at
	`, p.ID, p.Email, passwordHash, p.FullName).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("%w: email %s", auth.ErrConflict, p.Email)
		}
		return err
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id string) (auth.Profile, error) {
	if s.db == nil {
		return auth.Profile{}, errors.New("database connection unavailable")
	}

	var p auth.Profile
	err := s.db.QueryRowContext(ctx, `select`+profileColumns+`
		from profiles where id = $1`, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.AuthorityType,
		&p.Organization, &p.State, &p.District,
		&p.Municipality, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Profile{}, fmt.Errorf("%w: profile %s", auth.ErrNotFound, id)
	}
	if err != nil {
		return auth.Profile{}, err
	}
	return p, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (auth.Profile, string, error) {
	if s.db == nil {
		return auth.Profile{}, "", errors.New("database connection unavailable")
	}

	var (
		p    auth.Profile
		hash string
	)
	err := s.db.QueryRowContext(ctx, `select`+profileColumns+`, password_hash
		from profiles where lower(email) = lower($1)`, email).Scan(
		&p.ID, &p.Email, &p.FullName, &p.AuthorityType,
		&p.Organization, &p.State, &p.District,
		&p.Municipality, &p.CreatedAt, &p.UpdatedAt, &hash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Profile{}, "", fmt.Errorf("%w: email %s", auth.ErrNotFound, email)
	}
	if err != nil {
		return auth.Profile{}, "", err
	}
	return p, hash, nil
}

func (s *Store) UpdateFullName(ctx context.Context, id, fullName string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	res, err := s.db.ExecContext(ctx, `
		update profiles set full_name = $2, updated_at = now()
		where id = $1
	`, id, fullName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: profile %s", auth.ErrNotFound, id)
	}
	return nil
}

func (s *Store) SetJurisdiction(ctx context.Context, id string, upd auth.JurisdictionUpdate) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	state, district, municipality := upd.ScopeColumns()
	res, err := s.db.ExecContext(ctx, `
		update profiles set
			authority_type = $2, organization = nullif($3,''),
			state = nullif($4,''), district = nullif($5,''),
			municipality = nullif($6,''), updated_at = now()
		where id = $1
	`, id, string(upd.AuthorityType), upd.Organization, state, district, municipality)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: profile %s", auth.ErrNotFound, id)
	}
	return nil
}

func (s *Store) Assign(ctx context.Context, userID string, role jurisdiction.AuthorityType) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	_, err := s.db.ExecContext(ctx, `
		insert into user_roles (user_id, role)
		values ($1, $2)
		on conflict (user_id, role) do nothing
	`, userID, string(role))
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: profile %s", auth.ErrNotFound, userID)
		}
		return err
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]jurisdiction.AuthorityType, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}

	rows, err := s.db.QueryContext(ctx, `
		select role from user_roles where user_id = $1 order by role
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []jurisdiction.AuthorityType
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, jurisdiction.AuthorityType(role))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
