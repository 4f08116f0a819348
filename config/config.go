package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"careops/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP API configuration
	HTTPAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Scheduler configuration
	SchedulerEnabled         bool
	SchedulerIntervalSeconds int // how often due automations are checked

	// Notification dispatcher configuration
	DispatcherIntervalSeconds int // pending-notification sweep cadence

	// Lease reminder configuration
	LeaseReminderDays          int // how far ahead expiring head leases are flagged
	LeaseReminderIntervalHours int

	// Mailer configuration
	MailerBaseURL string // outbound email provider endpoint
	MailerAPIKey  string
	MailerFrom    string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Scheduler
		SchedulerEnabled:         getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerIntervalSeconds: getEnvInt("SCHEDULER_INTERVAL_SECONDS", 30),

		// Notification dispatcher
		DispatcherIntervalSeconds: getEnvInt("DISPATCHER_INTERVAL_SECONDS", 30),

		// Lease reminders
		LeaseReminderDays:          getEnvInt("LEASE_REMINDER_DAYS", 60),
		LeaseReminderIntervalHours: getEnvInt("LEASE_REMINDER_INTERVAL_HOURS", 24),

		// Mailer
		MailerBaseURL: os.Getenv("MAILER_BASE_URL"),
		MailerAPIKey:  os.Getenv("MAILER_API_KEY"),
		MailerFrom:    getEnvWithDefault("MAILER_FROM", "noreply@careops.local"),

		// OpenTelemetry
		OTelEnabled:              getEnvBool("OTEL_ENABLED", false),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "careops"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: getEnvInt("OTEL_EXPORT_INTERVAL_MILLIS", 60000),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable parsed as int or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable parsed as bool or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:                   ":0",
		Environment:                "test",
		SchedulerEnabled:           false,
		SchedulerIntervalSeconds:   1,
		DispatcherIntervalSeconds:  1,
		LeaseReminderDays:          60,
		LeaseReminderIntervalHours: 24,
		MailerFrom:                 "noreply@careops.test",
		OTelServiceName:            "careops-test",
		OTelExporterType:           "none",
	}
}
