package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/models"
)

func newLoginCommand(app *App) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email-or-id>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := credentials.SignIn(cmd.Context(), app.Checker, app.Sessions, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(resp, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newRegisterCommand(app *App) *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := credentials.SignUp(cmd.Context(), app.Checker, app.Sessions, args[0], password, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", displayName(resp, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The local session is cleared even when the server cannot revoke the token.
			if backend, err := app.authorised(); err == nil {
				if err := backend.Logout(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", err)
				}
			}
			if err := app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			session := app.Sessions.Session()
			if session.State() != models.SessionAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", session.User.Email, session.User.ID)
		},
	}
}

func displayName(resp *models.AuthResponse, fallback string) string {
	if resp != nil && resp.User != nil && resp.User.Email != "" {
		return resp.User.Email
	}
	return fallback
}
