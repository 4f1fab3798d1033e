package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"voxxy/internal/api"
)

// Config holds CLI configuration.
type Config struct {
	APIURL   string
	Token    string
	DataDir  string
	DBPath   string
	LogPath  string
	LogLevel string
	Lat      *float64
	Lng      *float64
}

// HasPosition reports whether a device position was configured.
func (c *Config) HasPosition() bool {
	return c.Lat != nil && c.Lng != nil
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	return parse(flag.CommandLine, os.Args[1:], version)
}

func parse(fs *flag.FlagSet, args []string, version string) (*Config, error) {
	config := &Config{}

	// Load .env files first so env-based defaults work with flag parsing.
	// Variables already in the environment win.
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	var lat, lng string
	var showVersion bool
	fs.StringVar(&config.APIURL, "api-url", envOr("VOXXY_API_URL", api.DefaultBaseURL), "Voxxy API base URL")
	fs.StringVar(&config.Token, "token", os.Getenv("VOXXY_TOKEN"), "API token of the signed-in user (or set VOXXY_TOKEN)")
	fs.StringVar(&config.DataDir, "data-dir", os.Getenv("VOXXY_DATA_DIR"), "Directory for local data (default: ~/.voxxy)")
	fs.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (default: <data-dir>/voxxy.db)")
	fs.StringVar(&config.LogLevel, "log-level", envOr("VOXXY_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&lat, "lat", os.Getenv("VOXXY_LAT"), "Device latitude used for \"current location\"")
	fs.StringVar(&lng, "lng", os.Getenv("VOXXY_LNG"), "Device longitude used for \"current location\"")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Println("voxxy", version)
		os.Exit(0)
	}

	var err error
	if config.Lat, err = parseCoordinate(lat, 90); err != nil {
		return nil, fmt.Errorf("invalid --lat: %w", err)
	}
	if config.Lng, err = parseCoordinate(lng, 180); err != nil {
		return nil, fmt.Errorf("invalid --lng: %w", err)
	}
	if (config.Lat == nil) != (config.Lng == nil) {
		return nil, fmt.Errorf("--lat and --lng must be set together")
	}

	// Set default data dir if not specified
	if config.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.DataDir = filepath.Join(home, ".voxxy")
	}
	if err := os.MkdirAll(config.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if config.DBPath == "" {
		config.DBPath = filepath.Join(config.DataDir, "voxxy.db")
	}
	config.LogPath = filepath.Join(config.DataDir, "voxxy.log")
	config.Token = strings.TrimSpace(config.Token)

	return config, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseCoordinate(s string, limit float64) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v < -limit || v > limit {
		return nil, fmt.Errorf("%v out of range", v)
	}
	return &v, nil
}
