package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/syncline/contactsync/pkg/constants"
)

// Config holds the application configuration loaded from environment
// variables, .env files, and command-line flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Directory configuration
	HubSpotAPIKey  string
	HubSpotBaseURL string

	// Source configuration. When CSVFile is set, contacts are read from
	// it instead of being extracted from the directory.
	CSVFile string

	// Pipeline configuration
	RulesFile   string
	ReportFile  string
	DryRun      bool
	Geocode     bool
	GeocodeURL  string
	BatchSize   int
	Concurrency int
	Timeout     time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string

	// flagLogLevel is the --log-level flag value; it wins over -v/-q
	// and LOG_LEVEL.
	flagLogLevel string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnvKeys()

	config := &Config{
		HubSpotAPIKey:  viper.GetString("HUBSPOT_API_KEY"),
		HubSpotBaseURL: viper.GetString("HUBSPOT_BASE_URL"),
		CSVFile:        viper.GetString("CONTACTS_CSV"),
		RulesFile:      viper.GetString("RULES_FILE"),
		GeocodeURL:     viper.GetString("NOMINATIM_URL"),
		BatchSize:      constants.DefaultBatchSize,
		Concurrency:    constants.MaxConcurrentRequests,
		Timeout:        constants.RunTimeout,

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so
// flag values take precedence over env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	c.flagLogLevel = logLevel
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindEnvKeys explicitly binds the environment variables the app reads.
func bindEnvKeys() {
	keys := []string{
		"HUBSPOT_API_KEY",
		"HUBSPOT_BASE_URL",
		"CONTACTS_CSV",
		"RULES_FILE",
		"NOMINATIM_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
	}
	for _, key := range keys {
		_ = viper.BindEnv(key)
	}
}
