package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	ScraperAPI ScraperAPIConfig
	Gemini     GeminiConfig
	Google     GoogleConfig
	Search     SearchConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MetricsEnabled bool     `mapstructure:"metrics_enabled"`
}

// ScraperAPIConfig holds the remote-fetch provider configuration
type ScraperAPIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds the AI-completion provider configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// GoogleConfig holds Google Custom Search configuration
type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
	CSEID  string `mapstructure:"cse_id"`
}

// SearchConfig holds the knobs bounding a single search run
type SearchConfig struct {
	MaxRawCandidates   int           `mapstructure:"max_raw_candidates"`
	AICandidateCap     int           `mapstructure:"ai_candidate_cap"`
	HTMLTruncateBytes  int           `mapstructure:"html_truncate_bytes"`
	MinResultsBeforeAI int           `mapstructure:"min_results_before_ai"`
	SiteFanout         int           `mapstructure:"site_fanout"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	ProbeTimeout       time.Duration `mapstructure:"probe_timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescout/")

	// Environment variable settings
	v.SetEnvPrefix("PRICESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.metrics_enabled", true)

	// Remote-fetch provider defaults
	v.SetDefault("scraperapi.base_url", "https://api.scraperapi.com")

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Search defaults
	v.SetDefault("search.max_raw_candidates", 10)
	v.SetDefault("search.ai_candidate_cap", 5)
	v.SetDefault("search.html_truncate_bytes", 15000)
	v.SetDefault("search.min_results_before_ai", 3)
	v.SetDefault("search.site_fanout", 5)
	v.SetDefault("search.fetch_timeout", "30s")
	v.SetDefault("search.probe_timeout", "5s")
}

// validate validates the configuration. API keys are deliberately optional:
// a missing key disables the dependent capability instead of failing startup.
func validate(config *Config) error {
	if config.Search.MaxRawCandidates <= 0 {
		return fmt.Errorf("search.max_raw_candidates must be positive, got: %d", config.Search.MaxRawCandidates)
	}
	if config.Search.AICandidateCap <= 0 {
		return fmt.Errorf("search.ai_candidate_cap must be positive, got: %d", config.Search.AICandidateCap)
	}
	if config.Search.SiteFanout <= 0 {
		return fmt.Errorf("search.site_fanout must be positive, got: %d", config.Search.SiteFanout)
	}
	if config.Search.HTMLTruncateBytes < 1000 {
		return fmt.Errorf("search.html_truncate_bytes must be at least 1000, got: %d", config.Search.HTMLTruncateBytes)
	}
	return nil
}
