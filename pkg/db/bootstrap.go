package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the baud rate stored for new profiles.
const DefaultBaudRate = 115200

// detectPort picks the serial port stored for a new profile.
var detectPort = detectSerialPort

// Bootstrap creates the default profile on first run.
func (db *DB) Bootstrap(ctx context.Context) error {
	needed, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !needed {
		return nil
	}

	profile := &Profile{Name: "default", IsActive: true}
	if err := db.Profiles().Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}

	port := detectPort()
	if err := db.Links().UpdateSerial(ctx, &SerialLink{
		ProfileID: profile.ID,
		Port:      port,
		BaudRate:  DefaultBaudRate,
	}); err != nil {
		return fmt.Errorf("failed to create default serial link: %w", err)
	}

	log.Info().Int64("profile", profile.ID).Str("port", port).Msg("Created default profile")
	return nil
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// detectSerialPort returns the first USB serial port on the system, or "".
func detectSerialPort() string {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Debug().Err(err).Msg("Serial port enumeration failed")
		return ""
	}
	for _, p := range ports {
		if p.IsUSB {
			return p.Name
		}
	}
	return ""
}
