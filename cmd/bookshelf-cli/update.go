package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var updateCmd = &cobra.Command{
	Use:   "update <book-id>",
	Short: "Change a book's details",
	Long: `Change a book's title, author, category or favorite flag. Only the
flags given are sent; empty values leave the field unchanged.

Examples:
  bookshelf-cli update 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f --title "Dune"
  bookshelf-cli update 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f --favorite
  bookshelf-cli update 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f --favorite=false`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().String("author", "", "new author")
	updateCmd.Flags().String("category", "", "new category")
	updateCmd.Flags().Bool("favorite", false, "mark or unmark as favorite")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	opts := clientcli.UpdateOptions{ID: id}
	flags := cmd.Flags()

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	opts.Title = stringFlag("title")
	opts.Author = stringFlag("author")
	opts.Category = stringFlag("category")

	if flags.Changed("favorite") {
		v, _ := flags.GetBool("favorite")
		opts.IsFavorite = &v
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	book, err := client.Update(cmd.Context(), opts)
	if err != nil {
		return err
	}

	return getFormatter().FormatBook(os.Stdout, book)
}
