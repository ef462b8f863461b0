package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] --email <owner> <book-id> [book-id] ...",
	Short: "Remove books from a user's library",
	Long: `Delete books and their stored files from a user's library.

Examples:
  # Remove a single book
  bookshelf remove --email ada@example.com 0b9c6c1e-4a4f-4c8e-9a3e-2f1f5f1d7a10

  # Remove quietly (suppress per-book output)
  bookshelf remove -q --email ada@example.com <id1> <id2>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var (
	removeEmail string
	removeQuiet bool
)

func init() {
	removeCmd.Flags().StringVar(&removeEmail, "email", "", "email of the user who owns the books")
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-book output")
	_ = removeCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, parseErr := uuid.Parse(arg)
		if parseErr != nil {
			return fmt.Errorf("invalid book id %q: %w", arg, parseErr)
		}
		ids = append(ids, id)
	}

	a, err := newApp(ctx, cfg, false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	owner, err := a.accounts.FindByEmail(ctx, removeEmail)
	if errors.Is(err, bookshelf.ErrNotFound) {
		return fmt.Errorf("no user with email %s", removeEmail)
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	removed := 0
	notFound := 0

	for _, id := range ids {
		deleteErr := a.catalog.Delete(ctx, owner.ID, id)
		if errors.Is(deleteErr, bookshelf.ErrNotFound) {
			notFound++
			if !removeQuiet {
				slog.Warn("not found", "id", id)
			}
			continue
		}
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", id, deleteErr)
		}
		removed++
		if !removeQuiet {
			slog.Info("removed", "id", id)
		}
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}
