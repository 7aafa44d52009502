package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/api"
	"github.com/urmzd/shutterlink/pkg/app"
	"github.com/urmzd/shutterlink/pkg/device"

	_ "github.com/urmzd/shutterlink/docs"
)

// @title           Shutterlink API
// @version         1.0
// @description     REST API for connecting to a shutter speed tester and reading its measurements

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/shutterlink/shutterlink.db)")
	profile := flag.String("profile", "", "Configuration profile to use, created if missing (default: the active profile)")
	serialPort := flag.String("port", "", "Serial port of the tester (default: the profile's port)")
	addr := flag.String("addr", "", "Listen address (default: the profile's API server)")
	connect := flag.String("connect", "", "Transport to connect on startup (usb or bluetooth)")
	debug := flag.Bool("debug", false, "Log device output and discarded messages")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := context.Background()

	a, err := app.New(ctx, app.Options{DBPath: *dbPath, Profile: *profile, SerialPort: *serialPort})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}

	if *connect != "" {
		kind, err := device.ParseTransportKind(*connect)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -connect transport")
		}
		if err := a.Session.Connect(ctx, kind, ""); err != nil {
			log.Warn().Err(err).Str("transport", string(kind)).Msg("Tester unavailable, connect later through the API")
		}
	}

	router := api.NewRouter(a.Session, nil, a.Registry)

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down cleanly")
		}
		os.Exit(0)
	}()

	listen := a.Config.APIAddress()
	if *addr != "" {
		listen = *addr
	}
	log.Info().Str("address", listen).Msg("Starting API server")

	if err := router.Run(listen); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
