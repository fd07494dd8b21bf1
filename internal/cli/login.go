package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the remote API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}

			password, err := resolvePassword()
			if err != nil {
				return err
			}

			user, err := app.client.Login(cmd.Context(), email, password, "")
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Printf("%s logged in as %s (%s)\n", color.GreenString("✓"), user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email used to authenticate")
	cmd.MarkFlagRequired("email") //nolint:errcheck // flag exists

	return cmd
}

// resolvePassword reads the password from AUTOPILOT_PASSWORD, or prompts for
// it when attached to a terminal.
func resolvePassword() (string, error) {
	if password := os.Getenv("AUTOPILOT_PASSWORD"); password != "" {
		return password, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no password: set AUTOPILOT_PASSWORD or run interactively")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
