// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tripwhizz/tripsync/internal/auth"
	"github.com/tripwhizz/tripsync/internal/repo"
)

// Config holds all configuration values shared by tripsyncd and tripctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the companion HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// APIURL is the backend base URL (scheme, host and optional prefix). Required.
	APIURL string `env:"TRIPWHIZZ_API_URL,notEmpty"`

	// Token is a fixed backend token. When empty the credentials file at
	// TokenFile is used and watched for changes.
	Token string `env:"TRIPWHIZZ_TOKEN"`

	// TokenFile is where tripctl login stores credentials.
	TokenFile string `env:"TRIPWHIZZ_TOKEN_FILE"`

	// SelectionStore is the URL of the persisted selection store, e.g.
	// file:///path.json, sqlite:///path.db, postgres://..., redis://..., memory://.
	SelectionStore string `env:"TRIPSYNC_SELECTION_STORE"`

	// MaxBodyBytes caps companion API request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// CommandRate and CommandBurst cap companion API command requests
	// (select, refresh), each of which reaches the backend.
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"5"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"10"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, describe(err)
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = auth.DefaultPath()
	}
	if cfg.SelectionStore == "" {
		cfg.SelectionStore = repo.DefaultURL()
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named) without overriding ones already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", p, err)
		}
	}
	return nil
}

// describe turns env's aggregate error into one line naming every missing
// variable, falling back to the parser's own message for other failures.
func describe(err error) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return fmt.Errorf("parse env: %w", err)
	}
	var missing []string
	for _, e := range agg.Errors {
		var empty env.EmptyEnvVarError
		var unset env.EnvVarIsNotSetError
		switch {
		case errors.As(e, &empty):
			missing = append(missing, empty.Key)
		case errors.As(e, &unset):
			missing = append(missing, unset.Key)
		default:
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
}
