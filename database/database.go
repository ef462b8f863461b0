package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/postgres"
	"github.com/sagarc03/bookshelf/database/sqlite"
)

// Database is an open connection to a catalog backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Users() bookshelf.UserRepo
	Books() bookshelf.BookRepo
	Close() error
}

// Config holds the configuration for connecting to a catalog backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables names the users and books tables
	Tables bookshelf.Tables `mapstructure:"tables"`
	// AutoMigrate creates missing tables when the server starts
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Connect opens the configured backend. Migrate and Validate are left to the
// caller.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, optionally migrates, and validates the schema. On error the
// connection is closed.
func Open(ctx context.Context, cfg Config, migrate bool) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
