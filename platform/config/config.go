// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// TelephonyConfig provides settings for the telephony provider integration.
type TelephonyConfig interface {
	GetTelephonyBaseURL() string
	GetTelephonyAPIKey() string
	GetTelephonyCallerID() string
	GetTelephonyWebhookSecret() string
	IsTelephonyEnabled() bool
}

// SchedulerConfig provides settings for the asynq-based job scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetTaskReminderLead() time.Duration
}

// EmailConfig provides settings for SMTP email delivery.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketCallRecordings() string
	IsMinIOEnabled() bool
}

// CallsConfig provides tuning for the call reconciliation subsystem.
type CallsConfig interface {
	GetPendingCallExpiry() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	AppBaseURL                string
	TelephonyBaseURL          string
	TelephonyAPIKey           string
	TelephonyCallerID         string
	TelephonyWebhookSecret    string
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	TaskReminderLead          time.Duration
	EmailEnabled              bool
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	EmailFromName             string
	EmailFromAddress          string
	MinIOEndpoint             string
	MinIOAccessKey            string
	MinIOSecretKey            string
	MinIOUseSSL               bool
	MinioBucketCallRecordings string
	PendingCallExpiry         time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// TelephonyConfig implementation
func (c *Config) GetTelephonyBaseURL() string       { return c.TelephonyBaseURL }
func (c *Config) GetTelephonyAPIKey() string        { return c.TelephonyAPIKey }
func (c *Config) GetTelephonyCallerID() string      { return c.TelephonyCallerID }
func (c *Config) GetTelephonyWebhookSecret() string { return c.TelephonyWebhookSecret }
func (c *Config) IsTelephonyEnabled() bool {
	return c.TelephonyBaseURL != "" && c.TelephonyAPIKey != ""
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool          { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string          { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int           { return c.AsynqConcurrency }
func (c *Config) GetTaskReminderLead() time.Duration { return c.TaskReminderLead }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string             { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string            { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string            { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool                 { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketCallRecordings() string { return c.MinioBucketCallRecordings }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != ""
}

// CallsConfig implementation
func (c *Config) GetPendingCallExpiry() time.Duration { return c.PendingCallExpiry }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from environment variables. A .env file, if present,
// is loaded first so local development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                       getEnv("ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		JWTAccessSecret:           os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:              getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:               getEnvList("CORS_ORIGINS"),
		CORSAllowCreds:            getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		AppBaseURL:                getEnv("APP_BASE_URL", "http://localhost:3000"),
		TelephonyBaseURL:          os.Getenv("TELEPHONY_BASE_URL"),
		TelephonyAPIKey:           os.Getenv("TELEPHONY_API_KEY"),
		TelephonyCallerID:         os.Getenv("TELEPHONY_CALLER_ID"),
		TelephonyWebhookSecret:    os.Getenv("TELEPHONY_WEBHOOK_SECRET"),
		RedisURL:                  os.Getenv("REDIS_URL"),
		RedisTLSInsecure:          getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          getEnvInt("ASYNQ_CONCURRENCY", 10),
		TaskReminderLead:          getEnvDuration("TASK_REMINDER_LEAD", 30*time.Minute),
		EmailEnabled:              getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                  os.Getenv("SMTP_HOST"),
		SMTPPort:                  getEnvInt("SMTP_PORT", 587),
		SMTPUsername:              os.Getenv("SMTP_USERNAME"),
		SMTPPassword:              os.Getenv("SMTP_PASSWORD"),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "CRM"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", "noreply@localhost"),
		MinIOEndpoint:             os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:            os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:            os.Getenv("MINIO_SECRET_KEY"),
		MinIOUseSSL:               getEnvBool("MINIO_USE_SSL", false),
		MinioBucketCallRecordings: getEnv("MINIO_BUCKET_CALL_RECORDINGS", "call-recordings"),
		PendingCallExpiry:         getEnvDuration("PENDING_CALL_EXPIRY", 15*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" && !strings.EqualFold(cfg.Env, "development") {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
