package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"github.com/joho/godotenv"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreRemote = "remote"
	StoreMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	POSAPI    POSAPIConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
	Reporting ReportingConfig
	Cash      CashConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// AuthConfig holds the HMAC secret used to verify operator bearer tokens.
type AuthConfig struct {
	JWTSecret string
}

// POSAPIConfig points at the remote POS backend that owns orders.
type POSAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retries int
}

// StoreConfig selects where shifts are persisted.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig configures the current-shift cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SheetsConfig contains configuration required to write the shift ledger.
// Leaving both fields empty disables the ledger.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used
// to notify the store manager. An empty AccessToken disables notifications.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule    string
	Timezone        string
	StaleShiftAfter time.Duration
}

// CashConfig holds the legal tender set used for cash counts.
type CashConfig struct {
	Denominations models.Tender
}

// Enabled reports whether the redis cache is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// Enabled reports whether the ledger is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" || c.SpreadsheetID != "" }

// Enabled reports whether manager notifications are configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// Location resolves the reporting timezone.
func (c ReportingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	posTimeout, err := getenvDuration("POS_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	redisTTL, err := getenvDuration("REDIS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	staleAfter, err := getenvDuration("STALE_SHIFT_AFTER", 16*time.Hour)
	if err != nil {
		return nil, err
	}
	posRetries, err := strconv.Atoi(getenvWithDefault("POS_API_RETRIES", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid POS_API_RETRIES: %w", err)
	}
	redisDB, err := strconv.Atoi(getenvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tender := models.DefaultTender
	if raw := os.Getenv("CASH_DENOMINATIONS"); raw != "" {
		tender, err = models.ParseTender(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CASH_DENOMINATIONS: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		POSAPI: POSAPIConfig{
			BaseURL: os.Getenv("POS_API_BASE_URL"),
			Token:   os.Getenv("POS_API_TOKEN"),
			Timeout: posTimeout,
			Retries: posRetries,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "shiftdesk"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_LEDGER_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule:    getenvWithDefault("REPORT_CRON_SCHEDULE", "0 22 * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Ho_Chi_Minh"),
			StaleShiftAfter: staleAfter,
		},
		Cash: CashConfig{
			Denominations: tender,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.POSAPI.BaseURL == "" {
		return errors.New("POS_API_BASE_URL must be provided")
	}
	if c.POSAPI.Timeout <= 0 {
		return errors.New("POS_API_TIMEOUT must be positive")
	}
	if c.POSAPI.Retries < 0 {
		return errors.New("POS_API_RETRIES must not be negative")
	}

	switch c.Store.Driver {
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORE_DRIVER=mongo")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StoreRemote, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_LEDGER_ID must be provided")
		}
	}

	if c.Reporting.StaleShiftAfter <= 0 {
		return errors.New("STALE_SHIFT_AFTER must be positive")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.ManagerID == "":
			return errors.New("WHATSAPP_MANAGER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if len(c.Cash.Denominations) == 0 {
		return errors.New("CASH_DENOMINATIONS must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
