package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables and validate the schema",
	Long: `Create the users and books tables if they do not exist and check
that the existing tables have the expected columns.

Run this before 'bookshelf serve' when database.auto_migrate is disabled,
or to check a database without starting the server.`,
	RunE: runMigrate,
}

var migrateCheckOnly bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateCheckOnly, "check", false, "only validate the schema, do not create tables")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg, !migrateCheckOnly)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if migrateCheckOnly {
		slog.Info("schema is valid", "users", cfg.Database.Tables.Users, "books", cfg.Database.Tables.Books)
		return nil
	}

	slog.Info("migration complete", "users", cfg.Database.Tables.Users, "books", cfg.Database.Tables.Books)
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
