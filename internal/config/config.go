package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for local durable data
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Exchange rate sources
const (
	CurrencySourceCollectAPI  = "collectapi"
	CurrencySourceCentralBank = "centralbank"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string
	Storage  string
	DBConn   string

	JWTSecret string
	JWTTTL    time.Duration

	SupabaseURL string
	SupabaseKey string

	QuoteBaseURL        string
	QuoteAPIKey         string
	QuoteCurrencySource string
	CentralBankURL      string
	QuoteRefreshSpec    string
	DigestSpec          string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	SyncDebounce time.Duration
}

// NewConfig loads configuration from a .env file, if present, and environment variables
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	debounce, err := time.ParseDuration(getEnv("SYNC_DEBOUNCE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_DEBOUNCE: %w", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		Storage:             getEnv("STORAGE", StoragePostgres),
		DBConn:              getEnv("DB_CONN", "host=localhost port=5432 user=fincio password=fincio dbname=fincio sslmode=disable"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		JWTTTL:              jwtTTL,
		SupabaseURL:         getEnv("SUPABASE_URL", ""),
		SupabaseKey:         getEnv("SUPABASE_KEY", ""),
		QuoteBaseURL:        getEnv("QUOTE_BASE_URL", "https://api.collectapi.com"),
		QuoteAPIKey:         getEnv("QUOTE_API_KEY", ""),
		QuoteCurrencySource: getEnv("QUOTE_CURRENCY_SOURCE", CurrencySourceCollectAPI),
		CentralBankURL:      getEnv("CENTRAL_BANK_URL", "https://www.tcmb.gov.tr/kurlar/today.xml"),
		QuoteRefreshSpec:    getEnv("QUOTE_REFRESH_SPEC", "@every 5m"),
		DigestSpec:          getEnv("DIGEST_SPEC", "0 9 * * *"),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SenderEmail:         getEnv("SENDER_EMAIL", "noreply@fincio.app"),
		SyncDebounce:        debounce,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %s or %s", StoragePostgres, StorageMemory)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if (c.SupabaseURL == "") != (c.SupabaseKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set together")
	}
	switch c.QuoteCurrencySource {
	case CurrencySourceCollectAPI, CurrencySourceCentralBank:
	default:
		return fmt.Errorf("QUOTE_CURRENCY_SOURCE must be %s or %s", CurrencySourceCollectAPI, CurrencySourceCentralBank)
	}
	if _, err := strconv.Atoi(c.SMTPPort); err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	return nil
}

// SyncEnabled reports whether a remote document store is configured
func (c *Config) SyncEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// EmailEnabled reports whether notification digests can be mailed
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
