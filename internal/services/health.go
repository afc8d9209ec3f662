package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/mapsdb/internal/config"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every check passed
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck pings the database within a short timeout
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Error().Err(err).Msg("Health check failed - database connection")
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		log.Error().Err(err).Msg("Health check failed - database ping")
		return result
	}

	result.Database = "ok"
	result.Details["database_type"] = cfg.DBType
	result.Details["database_name"] = cfg.DBDatabase
	result.Details["project_visibility"] = cfg.ProjectVisibility
	log.Debug().Msg("Health check passed")
	return result
}
