package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"FastNotes/internal/config"
	"FastNotes/internal/database/models"
	"FastNotes/internal/logger"
)

// DSN builds the driver specific connection string unless cfg.DSN is set.
func DSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	switch cfg.Driver {
	case "mysql":
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
	case "postgres":
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, port, cfg.User, cfg.Password, cfg.Name)
	default:
		name := cfg.Name
		if strings.Contains(name, "?") {
			return name + "&_foreign_keys=on"
		}
		return name + "?_foreign_keys=on"
	}
}

func dialector(cfg config.Database) (gorm.Dialector, error) {
	dsn := DSN(cfg)
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.New(sqlite.Config{DriverName: sqliteDriver, DSN: dsn}), nil
	}
	return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
}

// Open connects to the configured database and verifies the connection.
// The returned handle is meant to be passed to NewStore; there is no
// package-level connection.
func Open(ctx context.Context, cfg config.Database, log zerolog.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.NewGorm(log, cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return db, nil
}

// AutoMigrate creates or extends the tables. MySQL tables use a binary
// collation so that category and tag names compare case-sensitively.
func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", "DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin")
	}

	return db.AutoMigrate(
		&models.Category{},
		&models.Tag{},
		&models.Note{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
