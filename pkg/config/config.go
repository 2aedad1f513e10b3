package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	JamAI    JamAIConfig
	Admin    AdminConfig
	Redis    RedisConfig
	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	OTEL     OTELConfig
	Log      LogConfig
	CORS     CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// JamAIConfig holds configuration for the hosted generative tables API
type JamAIConfig struct {
	BaseURL            string
	APIKey             string
	ProjectID          string
	ChatTableID        string
	SymptomTableID     string
	AppointmentTableID string
	Timeout            time.Duration
	RateLimitRPM       int
	RateLimitBurst     int
}

// AdminConfig holds admin login configuration
type AdminConfig struct {
	CredentialsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds configuration for the optional audit database
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// WhatsAppConfig holds WhatsApp Cloud API configuration
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Environment string
	Level       string
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		JamAI: JamAIConfig{
			BaseURL:            strings.TrimRight(getEnv("JAMAI_BASE_URL", "https://api.jamaibase.com"), "/"),
			APIKey:             os.Getenv("JAMAI_API_KEY"),
			ProjectID:          os.Getenv("JAMAI_PROJECT_ID"),
			ChatTableID:        getEnv("CHAT_TABLE_ID", "health_assistant"),
			SymptomTableID:     getEnv("ACTION_TABLE_SYMPTOM", "symptom_classifier"),
			AppointmentTableID: getEnv("ACTION_TABLE_APPOINTMENT", "appointment_bookings"),
			Timeout:            time.Duration(getEnvAsInt("JAMAI_TIMEOUT_SECONDS", 30)) * time.Second,
			RateLimitRPM:       getEnvAsInt("JAMAI_RATE_LIMIT_RPM", 0),
			RateLimitBurst:     getEnvAsInt("JAMAI_RATE_LIMIT_BURST", 5),
		},
		Admin: AdminConfig{
			CredentialsPath: getEnv("ADMIN_CREDENTIALS_PATH", "data/admin-credentials.json"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("AUDIT_DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clinic_assistant"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinic-assistant"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Log: LogConfig{
			Environment: getEnv("APP_ENV", "development"),
			Level:       getEnv("LOG_LEVEL", "info"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if cfg.JamAI.Timeout <= 0 {
		return nil, fmt.Errorf("JAMAI_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

// Configured reports whether a usable API key is present. Keys still carrying
// the "your_" placeholder from the sample env file are treated as missing.
func (c *JamAIConfig) Configured() bool {
	return c.APIKey != "" && !strings.Contains(c.APIKey, "your_")
}

// Enabled reports whether WhatsApp delivery credentials are present
func (c *WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
