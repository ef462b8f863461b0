package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stored files that no book references",
	Long: `Scan the upload directory and remove files that have no book record.

Such files are left behind when the server stops between storing an upload
and recording it, or when removing a deleted book's file failed. Files newer
than the grace period are kept since an upload may still be in flight.

Files that do not follow the <user id>/<generated name> layout are never
touched and are only reported.`,
	RunE: runCleanup,
}

var cleanupDryRun bool

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report orphaned files without removing them")
	cleanupCmd.Flags().Duration("grace", 0, "minimum file age before removal (default: service.orphan_grace)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	grace := cfg.Service.OrphanGrace
	if cmd.Flags().Changed("grace") {
		grace, _ = cmd.Flags().GetDuration("grace")
	}

	a, err := newApp(ctx, cfg, false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("starting cleanup", "grace", grace, "dry_run", cleanupDryRun)

	res, err := a.catalog.Reconcile(ctx, bookshelf.ReconcileOptions{
		GraceAge: grace,
		DryRun:   cleanupDryRun,
	})
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	for _, path := range res.Skipped {
		slog.Debug("ignored unexpected file", "path", path)
	}
	for _, o := range res.Orphans {
		slog.Info("orphan", "path", o.Path, "size", o.Size, "modified", o.ModTime)
	}

	slog.Info("cleanup complete",
		"scanned", res.Scanned,
		"orphans", len(res.Orphans),
		"removed", res.Removed,
		"too_fresh", res.TooFresh,
		"ignored", len(res.Skipped),
	)
	return nil
}
