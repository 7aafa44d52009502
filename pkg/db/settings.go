package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/urmzd/shutterlink/pkg/device"
)

// Settings holds the user settings of one profile.
type Settings struct {
	db        *DB
	profileID int64
}

// Settings returns the settings store of the given profile.
func (db *DB) Settings(profileID int64) *Settings {
	return &Settings{db: db, profileID: profileID}
}

// Orientation returns the stored shutter orientation.
func (s *Settings) Orientation(ctx context.Context) (device.Orientation, error) {
	v, err := s.get(ctx, "orientation")
	if err != nil {
		return "", err
	}
	return device.ParseOrientation(v)
}

// SetOrientation stores the shutter orientation.
func (s *Settings) SetOrientation(ctx context.Context, o device.Orientation) error {
	if _, err := device.ParseOrientation(string(o)); err != nil {
		return err
	}
	return s.set(ctx, "orientation", string(o))
}

// ViewMode returns the stored view mode.
func (s *Settings) ViewMode(ctx context.Context) (device.ViewMode, error) {
	v, err := s.get(ctx, "view_mode")
	if err != nil {
		return "", err
	}
	return device.ParseViewMode(v)
}

// SetViewMode stores the view mode.
func (s *Settings) SetViewMode(ctx context.Context, v device.ViewMode) error {
	if _, err := device.ParseViewMode(string(v)); err != nil {
		return err
	}
	return s.set(ctx, "view_mode", string(v))
}

// column is one of the fixed settings columns, never user input.
func (s *Settings) get(ctx context.Context, column string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+column+` FROM settings WHERE profile_id = ?`, s.profileID,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("settings for profile %d: %w", s.profileID, ErrProfileNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", column, err)
	}
	return v, nil
}

func (s *Settings) set(ctx context.Context, column, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (profile_id, `+column+`) VALUES (?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET `+column+` = excluded.`+column+`, updated_at = datetime('now')
	`, s.profileID, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", column, err)
	}
	return nil
}
