package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/truphotos-go/internal/core"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/session"
)

func newLoginCmd() *cobra.Command {
	var address, username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against a Jellyfin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			// Warn early when the server looks too old, but let the login
			// itself decide whether it works.
			if info, err := app.Client.GetPublicInfo(cmd.Context(), address); err == nil {
				if verr := jellyfin.CheckMinimumVersion(info.Version, app.Config.Server.MinVersion); verr != nil {
					app.Log.Warn().Err(verr).Msg("Server version check")
				}
			}

			if err := app.Sessions.Login(cmd.Context(), address, username, password); err != nil {
				return err
			}
			snap := app.Sessions.Snapshot()
			fmt.Printf("Logged in as %s on %s\n", snap.Session.User.Name, snap.Session.SelectedServer.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "server base URL, e.g. https://jellyfin.example.com")
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.MarkFlagRequired("address")
	cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			app.Sessions.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the restored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			state := app.Sessions.Restore(cmd.Context())
			snap := app.Sessions.Snapshot()
			fmt.Printf("State: %s\n", state)
			if snap.Session.User != nil {
				fmt.Printf("User: %s\n", snap.Session.User.Name)
			}
			if snap.Session.SelectedServer != nil {
				reachability := "unreachable"
				if app.Client.TestConnection(cmd.Context(), *snap.Session.SelectedServer) {
					reachability = "reachable"
				}
				fmt.Printf("Server: %s (%s) [%s]\n", snap.Session.SelectedServer.Name, snap.Session.SelectedServer.Address, reachability)
			}
			if snap.Session.SelectedLibrary != nil {
				fmt.Printf("Library: %s\n", snap.Session.SelectedLibrary.Name)
			}
			return nil
		},
	}
}

func newLibrariesCmd() *cobra.Command {
	var selectID string
	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "List photo libraries on the current server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := restoreAuthenticated(cmd.Context(), app); err != nil {
				return err
			}
			if err := app.Sessions.RefreshLibraries(cmd.Context()); err != nil {
				return err
			}
			snap := app.Sessions.Snapshot()

			if selectID != "" {
				for _, lib := range snap.Session.Libraries {
					if lib.ID == selectID {
						if err := app.Sessions.SelectLibrary(lib); err != nil {
							return err
						}
						fmt.Printf("Selected library %s\n", lib.Name)
						return nil
					}
				}
				return fmt.Errorf("no library with id %q", selectID)
			}

			for _, lib := range snap.Session.Libraries {
				marker := " "
				if snap.Session.SelectedLibrary != nil && snap.Session.SelectedLibrary.ID == lib.ID {
					marker = "*"
				}
				fmt.Printf("%s %s  %s (%s)\n", marker, lib.ID, lib.Name, lib.CollectionType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&selectID, "select", "", "select the library with this id")
	return cmd
}

// restoreAuthenticated restores the session and fails when no valid login
// is persisted.
func restoreAuthenticated(ctx context.Context, app *core.App) error {
	if state := app.Sessions.Restore(ctx); state == session.StateUnauthenticated {
		return fmt.Errorf("not logged in; run 'truphotos login' first")
	}
	return nil
}
