package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"voxxy/cmd"
	"voxxy/internal/api"
	"voxxy/internal/blocked"
	"voxxy/internal/db"
	"voxxy/internal/location"
	"voxxy/internal/logging"
	"voxxy/internal/store"
	"voxxy/internal/submit"
	"voxxy/internal/tryvoxxy"
	"voxxy/internal/ui"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logFile, err := logging.Setup(config.LogPath, config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Info().Str("version", version).Str("api", config.APIURL).Msg("starting voxxy")

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	kv := db.NewKV(database)

	if err := cmd.EnsurePolicy(kv); err != nil {
		if errors.Is(err, cmd.ErrPolicyDeclined) {
			fmt.Fprintln(os.Stderr, "ℹ  Voxxy needs you to accept the terms to continue.")
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	token := config.Token
	if token != "" && api.TokenExpired(token, time.Now()) {
		fmt.Fprintln(os.Stderr, "ℹ  VOXXY_TOKEN has expired, running signed out")
		log.Warn().Msg("dropping expired token")
		token = ""
	}
	if id, ok := api.UserIDFromToken(token); ok {
		log.Info().Int64("user_id", id).Msg("signed in")
	}
	client := api.NewClient(config.APIURL, token)

	var device location.StaticDevice
	if config.HasPosition() {
		device.Position = &location.Coordinates{Latitude: *config.Lat, Longitude: *config.Lng}
	}
	resolver := location.NewResolver(client, device, nil)
	defer resolver.Close()

	st := store.New()
	deps := ui.Deps{
		Backend:   client,
		Locations: resolver,
		Profiles:  client,
		Submitter: submit.NewSubmitter(client, st),
		Store:     st,
		Blocked:   blocked.New(client, kv),
		TryVoxxy:  tryvoxxy.NewSession(client, kv),
	}

	// Create and run Bubble Tea app
	p := tea.NewProgram(ui.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program exited with error")
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}
