// Package app assembles the shared runtime of the shutterlink binaries:
// the configuration database, the device link with its transports, metrics
// and the session.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/db"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/link"
	"github.com/urmzd/shutterlink/pkg/session"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// Options selects the database and overrides stored configuration.
type Options struct {
	// DBPath is the database file; empty uses the default location.
	DBPath string
	// Profile selects, creating if needed, the active profile.
	Profile string
	// SerialPort overrides the profile's serial port.
	SerialPort string
	// Dialer opens Bluetooth connections; nil uses the host adapter.
	Dialer transport.Dialer
}

// App is the running application.
type App struct {
	DB       *db.DB
	Config   *db.Config
	Registry *prometheus.Registry
	Link     *link.Link
	Session  *session.Session
}

// New opens the database, loads the active profile and builds a started
// session over a link with both transports registered.
func New(ctx context.Context, opts Options) (*App, error) {
	database, err := db.OpenAndMigrate(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	if opts.Profile != "" {
		if _, err := database.UseProfile(ctx, opts.Profile); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := link.NewMetrics(reg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	l := link.New(link.WithMetrics(metrics))

	port := cfg.SerialPort()
	if opts.SerialPort != "" {
		port = opts.SerialPort
	}
	baud := cfg.BaudRate()
	l.Register(device.TransportUSB, transport.SerialFactory(port, baud))

	if cfg.BLEEnabled() {
		dialer := opts.Dialer
		if dialer == nil {
			dialer = transport.NewAdapterDialer()
		}
		l.Register(device.TransportBluetooth, transport.BLEFactory(bleConfig(cfg.BLE), dialer))
	} else {
		l.Register(device.TransportBluetooth, device.NullFactory(device.TransportBluetooth))
	}

	s := session.New(l, database.Settings(cfg.Profile.ID),
		session.WithSerialFactory(func(port string) device.Factory {
			return transport.SerialFactory(port, baud)
		}),
	)
	s.Start()

	log.Info().
		Str("profile", cfg.Profile.Name).
		Str("serial_port", port).
		Int("baud_rate", baud).
		Bool("bluetooth", cfg.BLEEnabled()).
		Msg("Configuration loaded")

	return &App{
		DB:       database,
		Config:   cfg,
		Registry: reg,
		Link:     l,
		Session:  s,
	}, nil
}

// Close disconnects the device, closes the session and the database.
func (a *App) Close() error {
	linkErr := a.Link.Disconnect()
	a.Session.Close()
	dbErr := a.DB.Close()
	return errors.Join(linkErr, dbErr)
}

func bleConfig(l *db.BLELink) transport.BLEConfig {
	return transport.BLEConfig{
		DeviceName:  l.DeviceName,
		ServiceUUID: l.ServiceUUID,
		RXUUID:      l.RXUUID,
		TXUUID:      l.TXUUID,
		ScanTimeout: l.ScanTimeout,
	}
}
