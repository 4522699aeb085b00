// Package cli is the storyboard command line client: it signs in against the
// server, keeps the session in a local slot store and manages the image
// library.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/remote"
	"storyboard-server/internal/store"
)

// App holds the dependencies shared by all commands.
type App struct {
	Checker  credentials.Checker
	Sessions *store.AuthStore
	// Images returns the backend authorised with token.
	Images func(token string) remote.Store
	Out    io.Writer
}

// NewRootCommand creates the root command of the storyboard client.
func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storyboard",
		Short:         "Storyboard client",
		Long:          "Sign in to a storyboard server and manage your drawings from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Sessions.Hydrate(cmd.Context())
		},
	}
	cmd.SetOut(app.Out)

	cmd.AddCommand(newLoginCommand(app))
	cmd.AddCommand(newRegisterCommand(app))
	cmd.AddCommand(newLogoutCommand(app))
	cmd.AddCommand(newWhoamiCommand(app))
	cmd.AddCommand(newImagesCommand(app))
	return cmd
}

// authorised returns the backend for the signed-in user.
func (a *App) authorised() (remote.Store, error) {
	session := a.Sessions.Session()
	if session.Token == nil {
		return nil, fmt.Errorf("not logged in; run `storyboard login` first")
	}
	return a.Images(*session.Token), nil
}
