package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/app"
	shuttermcp "github.com/urmzd/shutterlink/pkg/mcp"
)

func main() {
	// Logging must go to stderr, stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/shutterlink/shutterlink.db)")
	profile := flag.String("profile", "", "Configuration profile to use, created if missing (default: the active profile)")
	serialPort := flag.String("port", "", "Serial port of the tester (default: the profile's port)")
	flag.Parse()

	a, err := app.New(context.Background(), app.Options{DBPath: *dbPath, Profile: *profile, SerialPort: *serialPort})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down cleanly")
		}
	}()

	mcpServer := shuttermcp.NewServer(a.Session, nil)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
