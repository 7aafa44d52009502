package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is a named set of link configuration and settings.
type Profile struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileStore provides profile operations.
type ProfileStore interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	GetActive(ctx context.Context) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Create(ctx context.Context, p *Profile) error
	SetActive(ctx context.Context, id int64) error
}

// Profiles returns a ProfileStore for this database.
func (db *DB) Profiles() ProfileStore {
	return &profileStore{db: db}
}

type profileStore struct {
	db *DB
}

const profileColumns = `id, name, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.IsActive, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

func (s *profileStore) Get(ctx context.Context, id int64) (*Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

func (s *profileStore) GetActive(ctx context.Context) (*Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE is_active = 1 LIMIT 1`))
}

func (s *profileStore) GetByName(ctx context.Context, name string) (*Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
}

func (s *profileStore) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Create inserts the profile together with default link and settings rows.
func (s *profileStore) Create(ctx context.Context, p *Profile) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (name, is_active) VALUES (?, ?)`, p.Name, p.IsActive)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		for _, table := range []string{"api_servers", "serial_links", "ble_links", "settings"} {
			if _, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (profile_id) VALUES (?)`, id); err != nil {
				return fmt.Errorf("failed to create %s row: %w", table, err)
			}
		}
		p.ID = id
		return nil
	})
}

func (s *profileStore) SetActive(ctx context.Context, id int64) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0`); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE profiles SET is_active = 1, updated_at = datetime('now') WHERE id = ?`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrProfileNotFound
		}
		return nil
	})
}

// UseProfile makes the profile called name active, creating it with default
// link configuration and settings if it does not exist.
func (db *DB) UseProfile(ctx context.Context, name string) (*Profile, error) {
	store := db.Profiles()

	p, err := store.GetByName(ctx, name)
	if errors.Is(err, ErrProfileNotFound) {
		p = &Profile{Name: name}
		if err := store.Create(ctx, p); err != nil {
			return nil, err
		}
		log.Info().Int64("profile", p.ID).Str("name", name).Msg("Created profile")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile %q: %w", name, err)
	}

	if err := store.SetActive(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("failed to activate profile %q: %w", name, err)
	}
	p.IsActive = true
	return p, nil
}
