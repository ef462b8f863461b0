package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bookshelf",
	Short:   "Personal e-book library server",
	Long: `Bookshelf stores e-book files per user and keeps a searchable
catalog of them, served over a JSON REST API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var files []string
		if configFile != "" {
			files = []string{configFile}
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: BOOKSHELF_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: bookshelf.db, env: BOOKSHELF_DATABASE_DSN or DATABASE_URL)")
	rootCmd.PersistentFlags().String("storage-path", "", "upload directory (default: ./uploads, env: BOOKSHELF_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	ctx, stop := signalContext()
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
