package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrLinkNotFound = errors.New("link config not found")

// SerialLink is the USB serial configuration of a profile.
type SerialLink struct {
	ProfileID int64
	Port      string
	BaudRate  int
}

// BLELink is the Bluetooth LE configuration of a profile. Empty UUIDs mean
// the tester's default UART service.
type BLELink struct {
	ProfileID   int64
	Enabled     bool
	DeviceName  string
	ServiceUUID string
	RXUUID      string
	TXUUID      string
	ScanTimeout time.Duration
}

// LinkStore reads and updates transport configuration.
type LinkStore interface {
	Serial(ctx context.Context, profileID int64) (*SerialLink, error)
	UpdateSerial(ctx context.Context, l *SerialLink) error
	BLE(ctx context.Context, profileID int64) (*BLELink, error)
	UpdateBLE(ctx context.Context, l *BLELink) error
}

// Links returns a LinkStore for this database.
func (db *DB) Links() LinkStore {
	return &linkStore{db: db}
}

type linkStore struct {
	db *DB
}

func (s *linkStore) Serial(ctx context.Context, profileID int64) (*SerialLink, error) {
	l := &SerialLink{ProfileID: profileID}
	err := s.db.QueryRowContext(ctx,
		`SELECT port, baud_rate FROM serial_links WHERE profile_id = ?`, profileID,
	).Scan(&l.Port, &l.BaudRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *linkStore) UpdateSerial(ctx context.Context, l *SerialLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO serial_links (profile_id, port, baud_rate) VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET port = excluded.port, baud_rate = excluded.baud_rate
	`, l.ProfileID, l.Port, l.BaudRate)
	return err
}

func (s *linkStore) BLE(ctx context.Context, profileID int64) (*BLELink, error) {
	l := &BLELink{ProfileID: profileID}
	var timeoutMS int64
	err := s.db.QueryRowContext(ctx, `
		SELECT enabled, device_name, service_uuid, rx_uuid, tx_uuid, scan_timeout_ms
		FROM ble_links WHERE profile_id = ?
	`, profileID).Scan(&l.Enabled, &l.DeviceName, &l.ServiceUUID, &l.RXUUID, &l.TXUUID, &timeoutMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	l.ScanTimeout = time.Duration(timeoutMS) * time.Millisecond
	return l, nil
}

func (s *linkStore) UpdateBLE(ctx context.Context, l *BLELink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ble_links (profile_id, enabled, device_name, service_uuid, rx_uuid, tx_uuid, scan_timeout_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			enabled = excluded.enabled,
			device_name = excluded.device_name,
			service_uuid = excluded.service_uuid,
			rx_uuid = excluded.rx_uuid,
			tx_uuid = excluded.tx_uuid,
			scan_timeout_ms = excluded.scan_timeout_ms
	`, l.ProfileID, l.Enabled, l.DeviceName, l.ServiceUUID, l.RXUUID, l.TXUUID, l.ScanTimeout.Milliseconds())
	return err
}
