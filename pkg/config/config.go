package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	defaultLogLevel = "info"
	defaultWindow   = 6
	defaultWorkers  = 4
)

// Config holds the environment defaults of the CLI. Flags override them.
type Config struct {
	DSN       string // RFM_DSN
	LogLevel  string // RFM_LOG_LEVEL
	LogPretty bool   // RFM_LOG_PRETTY
	Window    int    // RFM_WINDOW, trailing months of the series
	Workers   int    // RFM_WORKERS, accounts computed in parallel

	MissingFiles []string // .env files that could not be read, for the caller to log
}

// Load reads the given .env files (".env" when none) into the environment,
// then builds the Config. A missing .env file is not an error; it is listed
// in MissingFiles since logging is usually not set up yet.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var missing []string
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			missing = append(missing, f)
		}
	}

	cfg := &Config{
		DSN:       os.Getenv("RFM_DSN"),
		LogLevel:  strings.ToLower(os.Getenv("RFM_LOG_LEVEL")),
		LogPretty: os.Getenv("RFM_LOG_PRETTY") != "false",
		Window:    defaultWindow,
		Workers:   defaultWorkers,
	}
	cfg.MissingFiles = missing

	// Default values
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	var err error
	if cfg.Window, err = intEnv("RFM_WINDOW", defaultWindow); err != nil {
		return nil, err
	}
	if cfg.Window < 0 {
		return nil, errors.Newf("RFM_WINDOW must be >= 0, got %d", cfg.Window)
	}
	if cfg.Workers, err = intEnv("RFM_WORKERS", defaultWorkers); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s=%q", key, raw)
	}
	return n, nil
}
