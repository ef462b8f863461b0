package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/config"
	"github.com/sagarc03/bookshelf/database"
	"github.com/sagarc03/bookshelf/filesystem"
	"github.com/sagarc03/bookshelf/token"
)

// app holds the services built from the loaded configuration.
type app struct {
	db       database.Database
	root     *os.Root
	catalog  *bookshelf.CatalogService
	accounts *bookshelf.AccountService
}

func (a *app) Close() {
	if a.root != nil {
		_ = a.root.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// openDatabase connects, migrates when requested and validates the schema.
func openDatabase(ctx context.Context, cfg *config.Config, migrate bool) (database.Database, error) {
	db, err := database.Open(ctx, cfg.Database, migrate)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type, "migrated", migrate)
	return db, nil
}

// openStorage opens the upload directory, creating it when create is set.
func openStorage(cfg *config.Config, create bool) (*os.Root, error) {
	if create {
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	} else if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}
	return root, nil
}

// newApp wires the database, storage and services for a command.
func newApp(ctx context.Context, cfg *config.Config, migrate, createStorage bool) (*app, error) {
	a := &app{}

	var err error
	if a.db, err = openDatabase(ctx, cfg, migrate); err != nil {
		return nil, err
	}

	if a.root, err = openStorage(cfg, createStorage); err != nil {
		a.Close()
		return nil, err
	}

	blobs, err := bookshelf.NewBlobStore(filesystem.NewFileStorage(a.root), cfg.Server.MaxUploadSize)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create blob store: %w", err)
	}

	a.catalog, err = bookshelf.NewCatalogService(a.db.Books(), blobs, bookshelf.CatalogConfig{
		CleanupTimeout: time.Duration(cfg.Service.CleanupTimeout) * time.Second,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create catalog service: %w", err)
	}

	tokens, err := token.New(token.Config{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.TokenTTL})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create token service: %w", err)
	}

	a.accounts, err = bookshelf.NewAccountService(a.db.Users(), tokens, bookshelf.AccountConfig{
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create account service: %w", err)
	}

	return a, nil
}
