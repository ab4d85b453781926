package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode   string // Set via flag, not env
	LogLevel  string
	LogFormat string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort        string
	ServiceApiPort string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	OpsEmail        string // internal staff, receives escalations
	MockServices    bool
	LogEmailsPath   string

	// AWS S3 (file-ready events)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	FilesPrefix        string

	// Sweeps
	NewFilesInterval         time.Duration
	OfferSweepInterval       time.Duration
	NewFilesLookback         time.Duration
	MissingInfoReminderAfter time.Duration
	SupplierReminderAfter    time.Duration
	CompletionGrace          time.Duration

	// Offer workflow
	CorrectionExpiryHours       int
	SupplierResponseExpiryHours int
	CompletionPercentage        int

	// Rate limiting of the event ingress
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{RunMode: runMode}
	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getDuration := func(key, defaultValue string) (time.Duration, error) {
		d, err := time.ParseDuration(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("invalid %s: must be positive", key)
		}
		return d, nil
	}

	getInt := func(key, defaultValue string) (int, error) {
		n, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return n, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "quote")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "offers@quote.example.com")
	cfg.OpsEmail = getEnv("OPS_EMAIL", "ops@quote.example.com")
	cfg.MockServices = strings.EqualFold(getEnv("MOCK_SERVICES", "false"), "true")
	cfg.LogEmailsPath = getEnv("LOG_EMAILS", "")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "eu-central-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.FilesPrefix = getEnv("FILES_PREFIX", "ready/")

	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return nil, err
	}
	if cfg.SmtpPort, err = getInt("SMTP_PORT", "587"); err != nil {
		return nil, err
	}

	if cfg.NewFilesInterval, err = getDuration("NEW_FILES_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.OfferSweepInterval, err = getDuration("OFFER_SWEEP_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	if cfg.NewFilesLookback, err = getDuration("NEW_FILES_LOOKBACK", "24h"); err != nil {
		return nil, err
	}
	if cfg.MissingInfoReminderAfter, err = getDuration("MISSING_INFO_REMINDER_AFTER", "2h"); err != nil {
		return nil, err
	}
	if cfg.SupplierReminderAfter, err = getDuration("SUPPLIER_REMINDER_AFTER", "6h"); err != nil {
		return nil, err
	}
	if cfg.CompletionGrace, err = getDuration("COMPLETION_GRACE", "10m"); err != nil {
		return nil, err
	}

	if cfg.CorrectionExpiryHours, err = getInt("CORRECTION_EXPIRY_HOURS", "72"); err != nil {
		return nil, err
	}
	if cfg.SupplierResponseExpiryHours, err = getInt("SUPPLIER_RESPONSE_EXPIRY_HOURS", "48"); err != nil {
		return nil, err
	}
	if cfg.CompletionPercentage, err = getInt("COMPLETION_PERCENTAGE", "60"); err != nil {
		return nil, err
	}
	if cfg.CompletionPercentage < 0 || cfg.CompletionPercentage > 100 {
		return nil, fmt.Errorf("invalid COMPLETION_PERCENTAGE: %d is outside 0..100", cfg.CompletionPercentage)
	}

	if cfg.RateLimitBucketSize, err = getInt("RATE_LIMIT_BUCKET_SIZE", "20"); err != nil {
		return nil, err
	}
	if cfg.RateLimitRefillRate, err = getInt("RATE_LIMIT_REFILL_RATE", "10"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CorrectionExpiry is the correction window as a duration.
func (c *Config) CorrectionExpiry() time.Duration {
	return time.Duration(c.CorrectionExpiryHours) * time.Hour
}

// SupplierResponseExpiry is the supplier bidding window as a duration.
func (c *Config) SupplierResponseExpiry() time.Duration {
	return time.Duration(c.SupplierResponseExpiryHours) * time.Hour
}
