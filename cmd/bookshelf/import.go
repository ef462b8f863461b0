package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/config"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] --email <owner> <file1> [file2] ...",
	Short: "Import e-book files into a user's library",
	Long: `Import e-book files from local paths into a user's library.

Each file is copied into the upload directory under a generated name and
a book record is created for it. Files with an unsupported extension are
skipped.

Examples:
  # Import a single book
  bookshelf import --email ada@example.com ~/books/dune.epub

  # Import a directory recursively with a category
  bookshelf import --email ada@example.com -r --category scifi ~/books`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importEmail     string
	importRecursive bool
	importCategory  string
	importAuthor    string
	importQuiet     bool
)

func init() {
	importCmd.Flags().StringVar(&importEmail, "email", "", "email of the user who will own the books")
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "recursively import directories")
	importCmd.Flags().StringVar(&importCategory, "category", "", "category for every imported book")
	importCmd.Flags().StringVar(&importAuthor, "author", "", "author for every imported book")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "suppress per-file output")
	_ = importCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var files []string
	for _, arg := range args {
		found, collectErr := collectFiles(arg, importRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		slog.Info("no files to import")
		return nil
	}

	a, err := newApp(ctx, cfg, false, true)
	if err != nil {
		return err
	}
	defer a.Close()

	owner, err := a.accounts.FindByEmail(ctx, importEmail)
	if errors.Is(err, bookshelf.ErrNotFound) {
		return fmt.Errorf("no user with email %s", importEmail)
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	imported := 0
	skipped := 0

	for _, path := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := filepath.Base(path)
		if !bookshelf.IsAllowedFileType(name) {
			skipped++
			if !importQuiet {
				slog.Info("skipped (unsupported type)", "path", path)
			}
			continue
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", path, openErr)
		}

		book, uploadErr := a.catalog.Upload(ctx, owner.ID, bookshelf.BookMetadata{
			Author:   importAuthor,
			Category: importCategory,
		}, name, f)
		_ = f.Close()

		if errors.Is(uploadErr, bookshelf.ErrFileTooLarge) {
			skipped++
			slog.Warn("skipped (too large)", "path", path, "max", a.catalog.MaxFileSize())
			continue
		}
		if uploadErr != nil {
			return fmt.Errorf("import %s: %w", path, uploadErr)
		}

		imported++
		if !importQuiet {
			slog.Info("imported", "path", path, "id", book.ID, "title", book.Title)
		}
	}

	slog.Info("import complete", "owner", owner.Email, "imported", imported, "skipped", skipped)
	return nil
}

// collectFiles returns path itself, or every regular file below it when
// path is a directory and recursive is set.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to import recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
