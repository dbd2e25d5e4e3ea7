package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Providers  ProvidersConfig
	Aggregator AggregatorConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ProviderConfig holds one aggregator integration's endpoint and
// credentials. Loaded once at startup and never mutated.
type ProviderConfig struct {
	BaseURL      string
	APIKey       string
	ClientID     string
	ClientSecret string
}

// Enabled reports whether the provider has enough configuration to be wired.
func (p ProviderConfig) Enabled() bool {
	return p.BaseURL != "" && (p.APIKey != "" || p.ClientID != "")
}

type ProvidersConfig struct {
	Sandbox    bool
	ConsumerID string
	Timeout    time.Duration
	Setu       ProviderConfig
	Yodlee     ProviderConfig
	Anumati    ProviderConfig
}

type AggregatorConfig struct {
	ConsentDurationDays int
	DataRetentionDays   int
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	consentDuration, err := strconv.Atoi(getEnv("CONSENT_DURATION_DAYS", "365"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONSENT_DURATION_DAYS: %w", err)
	}
	dataRetention, err := strconv.Atoi(getEnv("DATA_RETENTION_DAYS", "365"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_RETENTION_DAYS: %w", err)
	}

	sandbox := getBoolEnv("PROVIDER_SANDBOX", true)

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "askibill"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "askibill"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Providers: ProvidersConfig{
			Sandbox:    sandbox,
			ConsumerID: getEnv("PROVIDER_CONSUMER_ID", "askibill"),
			Timeout:    providerTimeout,
			Setu: ProviderConfig{
				BaseURL: getEnv("SETU_BASE_URL", defaultBaseURL(sandbox, "https://sandbox.setu.co", "https://prod.setu.co")),
				APIKey:  getEnv("SETU_API_KEY", ""),
			},
			Yodlee: ProviderConfig{
				BaseURL:      getEnv("YODLEE_BASE_URL", defaultBaseURL(sandbox, "https://sandbox.api.yodlee.com/ysl", "https://api.yodlee.com/ysl")),
				ClientID:     getEnv("YODLEE_CLIENT_ID", ""),
				ClientSecret: getEnv("YODLEE_CLIENT_SECRET", ""),
			},
			Anumati: ProviderConfig{
				BaseURL: getEnv("ANUMATI_BASE_URL", defaultBaseURL(sandbox, "https://sandbox.anumati.com", "https://api.anumati.com")),
				APIKey:  getEnv("ANUMATI_API_KEY", ""),
			},
		},
		Aggregator: AggregatorConfig{
			ConsentDurationDays: consentDuration,
			DataRetentionDays:   dataRetention,
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "askibill-api"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	if cfg.Aggregator.ConsentDurationDays <= 0 {
		return nil, fmt.Errorf("CONSENT_DURATION_DAYS must be positive")
	}
	if cfg.Aggregator.DataRetentionDays <= 0 {
		return nil, fmt.Errorf("DATA_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func defaultBaseURL(sandbox bool, sandboxURL, prodURL string) string {
	if sandbox {
		return sandboxURL
	}
	return prodURL
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
