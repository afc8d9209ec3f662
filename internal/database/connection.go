package database

import (
	"fmt"
	"strings"
	"time"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector returns the gorm dialector for the configured DB_TYPE.
// "sqlite" uses the pure Go driver; "sqlite3" uses the cgo driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path or a file: URI
		return puresqlite.Open(cfg.DBDatabase), nil

	case "sqlite3":
		return sqlite.Open(cfg.DBDatabase), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, cfg.DBConnectionLimit, gormLogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, err
	}

	log.Info().Str("type", cfg.DBType).Str("database", cfg.DBDatabase).Msg("Connected to database")
	return db, nil
}

// Open opens a gorm connection on the given dialector and sizes its pool.
// Foreign key constraints are not created; referential rules are applied
// by the services inside their transactions.
func Open(dialector gorm.Dialector, connectionLimit int, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if connectionLimit < 1 {
		connectionLimit = 1
	}
	sqlDB.SetMaxOpenConns(connectionLimit)
	sqlDB.SetMaxIdleConns((connectionLimit + 1) / 2)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Project{}, "Users", &models.ProjectUser{}); err != nil {
		return fmt.Errorf("failed to set up project membership table: %w", err)
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.MarketArea{},
		&models.MapConfiguration{},
		&models.StylePreset{},
		&models.VariablePreset{},
		&models.ColorKey{},
		&models.TcgTheme{},
		&models.EnrichmentUsage{},
		&models.LabelPosition{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent", "off":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	}
	return logger.Warn
}
