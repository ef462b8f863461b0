package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/config"
	bookshelfhttp "github.com/sagarc03/bookshelf/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the bookshelf HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5000, "HTTP server port (env: BOOKSHELF_SERVER_PORT or PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		slog.Warn("using the built-in development JWT secret; set JWT_SECRET before exposing the server")
	}

	a, err := newApp(ctx, cfg, cfg.Database.AutoMigrate, true)
	if err != nil {
		return err
	}
	defer a.Close()

	handlerConfig := bookshelfhttp.HandlerConfig{
		CORS:   cfg.CORS,
		Health: a.db,
	}

	handler := bookshelfhttp.NewHandler(&handlerConfig, a.accounts, a.catalog)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// uploads of the full size ceiling need more than the usual 30s
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server", "addr", addr, "storage", cfg.Storage.Path, "max_upload_size", cfg.Server.MaxUploadSize)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
