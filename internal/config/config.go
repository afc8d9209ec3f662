package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Project visibility policies
const (
	VisibilityAll     = "all"
	VisibilityMembers = "members"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port        string
	CORSOrigins string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite3, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Bearer token verification
	JWTSecret string
	JWTIssuer string

	// Domain behavior
	ProjectVisibility string
	UsageWindowDays   int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		DBType:            strings.ToLower(getEnv("DB_TYPE", "mysql")),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		JWTIssuer:         getEnv("AUTH_JWT_ISSUER", ""),
		ProjectVisibility: strings.ToLower(getEnv("PROJECT_VISIBILITY", VisibilityAll)),
		UsageWindowDays:   getEnvAsInt("USAGE_WINDOW_DAYS", 30),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerated values
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DBUser == "" && !c.IsSQLite() {
		return fmt.Errorf("DB_USER is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	switch c.ProjectVisibility {
	case VisibilityAll, VisibilityMembers:
	default:
		return fmt.Errorf("PROJECT_VISIBILITY must be %q or %q, got %q", VisibilityAll, VisibilityMembers, c.ProjectVisibility)
	}
	if c.UsageWindowDays <= 0 {
		return fmt.Errorf("USAGE_WINDOW_DAYS must be positive")
	}
	if c.DBConnectionLimit < 1 {
		c.DBConnectionLimit = 1
	}
	return nil
}

// IsSQLite reports whether DBType selects one of the sqlite drivers
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite3"
}

// Origins splits CORS_ORIGINS into a list
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
