package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config is the runtime configuration of the active profile.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
	Serial    *SerialLink
	BLE       *BLELink
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:8080"
	}
	return c.APIServer.Address()
}

// SerialPort returns the configured serial port path, or "".
func (c *Config) SerialPort() string {
	if c.Serial == nil {
		return ""
	}
	return c.Serial.Port
}

// BaudRate returns the configured serial baud rate, or 0 for the default.
func (c *Config) BaudRate() int {
	if c.Serial == nil {
		return 0
	}
	return c.Serial.BaudRate
}

// BLEEnabled reports whether the Bluetooth link may be used.
func (c *Config) BLEEnabled() bool {
	return c.BLE != nil && c.BLE.Enabled
}

// ActiveConfig loads the complete configuration for the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	config := &Config{Profile: profile}

	config.APIServer, err = db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}

	links := db.Links()
	config.Serial, err = links.Serial(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrLinkNotFound) {
		return nil, fmt.Errorf("failed to get serial link config: %w", err)
	}
	config.BLE, err = links.BLE(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrLinkNotFound) {
		return nil, fmt.Errorf("failed to get BLE link config: %w", err)
	}

	return config, nil
}
