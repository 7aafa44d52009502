// Command shutter-console is an interactive terminal for a shutter speed
// tester.
//
// Usage:
//
//	shutter-console [flags]
//
// Flags:
//
//	-db string       Path to database file
//	-profile string  Configuration profile to use
//	-port string     Serial port of the tester
//	-connect string  Transport to connect on startup (usb or bluetooth)
//	-debug           Log device output and discarded messages
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/cmd/shutter-console/interactive"
	"github.com/urmzd/shutterlink/pkg/app"
	"github.com/urmzd/shutterlink/pkg/device"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/shutterlink/shutterlink.db)")
	profile := flag.String("profile", "", "Configuration profile to use, created if missing (default: the active profile)")
	serialPort := flag.String("port", "", "Serial port of the tester (default: the profile's port)")
	connect := flag.String("connect", "", "Transport to connect on startup (usb or bluetooth)")
	debug := flag.Bool("debug", false, "Log device output and discarded messages")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, app.Options{DBPath: *dbPath, Profile: *profile, SerialPort: *serialPort})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down cleanly")
		}
	}()

	console, err := interactive.New(a.Session, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start console")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: console.Stdout(), NoColor: true})

	if *connect != "" {
		kind, err := device.ParseTransportKind(*connect)
		if err != nil {
			log.Error().Err(err).Msg("Invalid -connect transport")
		} else if err := a.Session.Connect(ctx, kind, ""); err != nil {
			log.Error().Err(err).Str("transport", string(kind)).Msg("Connect failed")
		}
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	console.Run(ctx, cancel)
}
