package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var (
	listCategory string
	listSearch   string
)

var listCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List books in your library",
	Long: `List books in your library, newest first.

Search matches title or author, case-insensitively. Favorites are marked
with an asterisk.

Examples:
  bookshelf-cli list
  bookshelf-cli list dune
  bookshelf-cli list --category scifi --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "only books in this category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "match title or author")
}

func runList(cmd *cobra.Command, args []string) error {
	search := listSearch
	if len(args) > 0 {
		search = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	books, err := client.List(cmd.Context(), clientcli.ListOptions{
		Category: listCategory,
		Search:   search,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, books)
}
