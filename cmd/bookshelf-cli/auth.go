package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bookshelf/clientcli"
)

var (
	authName     string
	authEmail    string
	authPassword string
	authNoSave   bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Long: `Create an account on the server. The returned session token is saved
in the selected profile unless --no-save is given.

Missing values are prompted for; the password is never echoed.

Examples:
  bookshelf-cli register --name Ada --email ada@example.com
  bookshelf-cli -p work register`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session token",
	Long: `Exchange an email and password for a session token. The token is
saved in the selected profile unless --no-save is given.

Examples:
  bookshelf-cli login --email ada@example.com
  bookshelf-cli login --json --no-save | jq -r .token`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	registerCmd.Flags().StringVar(&authName, "name", "", "display name")
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (prompted when omitted)")
		c.Flags().BoolVar(&authNoSave, "no-save", false, "do not store the token in the profile")
	}
}

func runRegister(cmd *cobra.Command, _ []string) error {
	name, err := promptIfEmpty(authName, promptui.Prompt{Label: "Name", Validate: required("name")})
	if err != nil {
		return err
	}
	email, err := promptIfEmpty(authEmail, promptui.Prompt{Label: "Email", Validate: validEmail})
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(authPassword, promptui.Prompt{Label: "Password", Mask: '*', Validate: required("password")})
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	session, err := client.Register(cmd.Context(), name, email, password)
	if err != nil {
		return err
	}

	return finishLogin(client, session)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	email := authEmail
	if email == "" {
		if p, _ := loadProfile(); p != nil {
			email = p.Email
		}
	}

	email, err := promptIfEmpty(email, promptui.Prompt{Label: "Email", Validate: validEmail})
	if err != nil {
		return err
	}
	password, err := promptIfEmpty(authPassword, promptui.Prompt{Label: "Password", Mask: '*', Validate: required("password")})
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	session, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	return finishLogin(client, session)
}

// finishLogin stores the session in the selected profile, creating a
// "default" profile when none exist yet, and prints the session.
func finishLogin(client *clientcli.Client, session clientcli.Session) error {
	if !authNoSave {
		if err := saveSession(client.Endpoint(), session); err != nil {
			return err
		}
	}
	return getFormatter().FormatSession(os.Stdout, session)
}

func saveSession(endpointURL string, session clientcli.Session) error {
	configPath := getConfigPath()

	cf, err := clientcli.LoadConfigFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cf = &clientcli.ConfigFile{}
	} else if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := getProfileName()
	if name == "" {
		name = cf.DefaultName()
	}
	if name == "" {
		name = "default"
	}

	p := clientcli.Profile{Name: name, Endpoint: endpointURL, Default: len(cf.Profiles) == 0}
	if existing, getErr := cf.GetProfile(name); getErr == nil {
		p = *existing
		if endpoint != "" {
			p.Endpoint = endpointURL
		}
	}
	p.Email = session.User.Email
	p.Token = session.Token
	cf.PutProfile(p)

	if err := cf.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// promptIfEmpty returns value, or asks for it when empty.
func promptIfEmpty(value string, prompt promptui.Prompt) (string, error) {
	if value != "" {
		return value, nil
	}
	out, err := prompt.Run()
	if err != nil {
		return "", handlePromptError(err)
	}
	return out, nil
}

func required(field string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

var validate = validator.New()

func validEmail(input string) error {
	if err := validate.Var(input, "required,email"); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}
