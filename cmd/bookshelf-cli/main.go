package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	token       string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "bookshelf-cli",
	Version: version,
	Short:   "Client for the bookshelf e-book library",
	Long: `bookshelf-cli - Client for a bookshelf server

Register or log in once; the session token is saved in the selected
profile and used by every book command.

  bookshelf-cli register --name Ada --email ada@example.com
  bookshelf-cli upload ./dune.epub --category scifi
  bookshelf-cli list --search dune`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.bookshelf/config.yaml, env: BOOKSHELF_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: BOOKSHELF_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5000, env: BOOKSHELF_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "session token (env: BOOKSHELF_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError is returned when the command already reported its failures
// and only the exit code is left to set.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// getConfigPath resolves the profile file from the flag, env, then default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// getProfileName resolves the selected profile; empty means the default one.
func getProfileName() string {
	if profileName != "" {
		return profileName
	}
	return clientcli.ProfileFromEnv()
}

// loadProfile returns the selected profile, or nil when no config file
// exists and no profile was asked for by name.
func loadProfile() (*clientcli.Profile, error) {
	cf, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && cfgFile == "" && getProfileName() == "" {
			return nil, nil
		}
		return nil, err
	}

	p, err := cf.GetProfile(getProfileName())
	if errors.Is(err, clientcli.ErrNoProfiles) && getProfileName() == "" {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// buildConfig merges config from the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	return clientcli.MergeConfig(
		clientcli.ConfigFromProfile(profile),
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, Token: token},
	), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
