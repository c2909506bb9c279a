package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	TornAPIKey      string  `env:"TORN_API_KEY,required"`
	OurFactionID    int     `env:"OUR_FACTION_ID"`
	CachePath       string  `env:"CACHE_PATH" envDefault:"war_cache.db"`
	ReportsDir      string  `env:"REPORTS_DIR" envDefault:"reports"`
	PresetsFile     string  `env:"PRESETS_FILE" envDefault:"payout_presets.json"`
	SpreadsheetID   string  `env:"SPREADSHEET_ID"`
	CredentialsFile string  `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`
	DeployURL       string  `env:"DEPLOY_URL"`
	DeployKeyPath   string  `env:"DEPLOY_KEY_PATH" envDefault:"deploy.pem"`
	FactionShare    float64 `env:"FACTION_SHARE_DEFAULT" envDefault:"30"`
	GuaranteedShare float64 `env:"GUARANTEED_SHARE_DEFAULT" envDefault:"10"`
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment configuration: %w", err)
	}
	return &config, nil
}
