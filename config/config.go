package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"food-ordering-api/repository"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const EnvDevelopment = "development"

// devJWTSecret is only accepted in development
const devJWTSecret = "food_ordering_dev_secret"

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	SessionTTL time.Duration

	FrontendURL string
	CORSOrigins []string
	PublicURL   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioServiceSID string
	TwilioChannel    string
	DefaultDialCode  string

	StorageDriver      string
	LocalStoragePath   string
	S3Region           string
	S3Bucket           string
	GCSBucket          string
	GCSCredentialsFile string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

// Load reads the configuration from the environment after loading an
// optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionTTL, err := getEnvAsDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getEnvAsInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", EnvDevelopment),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "food_delivery.db"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: sessionTTL,

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8080"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioServiceSID: getEnv("TWILIO_VERIFY_SERVICE_SID", ""),
		TwilioChannel:    getEnv("TWILIO_CHANNEL", "sms"),
		DefaultDialCode:  getEnv("DEFAULT_DIAL_CODE", "+91"),

		StorageDriver:      getEnv("STORAGE_DRIVER", "local"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:           getEnv("S3_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:            strings.ToLower(getEnv("CURRENCY", "inr")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		CacheTTL:      cacheTTL,
	}
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", cfg.FrontendURL))

	if cfg.JWTSecret == "" && cfg.Relaxed() {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

// Relaxed reports development mode: missing provider credentials fall back
// to logging implementations and a failed verification send is tolerated.
func (c *Config) Relaxed() bool {
	return c.AppEnv == EnvDevelopment
}

// Validate fails fast on settings the server cannot run without
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres, mysql", c.DBDriver))
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Region == "" || c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_REGION and S3_BUCKET are required for s3 storage"))
		}
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for gcs storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of local, s3, gcs", c.StorageDriver))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ORIGINS must list at least one origin"))
	}

	if !c.Relaxed() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required"))
		}
		if c.StripeSecretKey == "" || c.StripeWebhookSecret == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required"))
		}
		if c.SMTPHost == "" || c.MailFrom == "" {
			errs = append(errs, errors.New("SMTP_HOST and MAIL_FROM are required"))
		}
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioServiceSID == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_VERIFY_SERVICE_SID are required"))
		}
	}
	return errors.Join(errs...)
}

// OpenDB connects with the configured driver and migrates the schema
func OpenDB(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(c.DBDSN)
	case "postgres":
		dialector = postgres.Open(c.DBDSN)
	case "mysql":
		dialector = mysql.Open(c.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
