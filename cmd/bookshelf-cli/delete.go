package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <book-id> [book-id...]",
	Short: "Delete books and their files",
	Long: `Delete one or more books. Failures are reported per book and the
remaining ids are still processed.

Examples:
  bookshelf-cli delete 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f
  bookshelf-cli delete -q <id1> <id2> <id3>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{IDs: ids})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
