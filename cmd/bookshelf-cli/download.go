package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <book-id> [local-path]",
	Short: "Download a book's file",
	Long: `Download a book's file. Without a local path the original file name
is used in the current directory.

Examples:
  bookshelf-cli download 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f
  bookshelf-cli download 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f ~/reader/dune.epub
  bookshelf-cli download --stdout 6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f > dune.epub`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		ID:        id,
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// metadata goes to stderr so stdout stays the file
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
