package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var (
	uploadRecursive bool
	uploadTitle     string
	uploadAuthor    string
	uploadCategory  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [local-path...]",
	Short: "Upload books to your library",
	Long: `Upload e-book files (epub, pdf, mobi, azw, txt, doc, docx).

The title defaults to the file name without its extension. With -r,
directories are walked and files with other extensions are ignored.

Examples:
  bookshelf-cli upload ./dune.epub
  bookshelf-cli upload --title "Dune" --author "Frank Herbert" ./d.epub
  bookshelf-cli upload -r --category scifi ./books/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directories recursively")
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "book title (single file only)")
	uploadCmd.Flags().StringVarP(&uploadAuthor, "author", "a", "", "book author")
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "", "book category")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var results []clientcli.UploadResult
	for _, localPath := range args {
		title := uploadTitle
		if len(args) > 1 {
			title = ""
		}

		res, uploadErr := client.Upload(cmd.Context(), clientcli.UploadOptions{
			LocalPath: localPath,
			Title:     title,
			Author:    uploadAuthor,
			Category:  uploadCategory,
			Recursive: uploadRecursive,
		})
		results = append(results, res...)
		if uploadErr != nil {
			results = append(results, clientcli.UploadResult{LocalPath: localPath, Err: uploadErr})
		}
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
