package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/truphotos-go/internal/catalog"
	"github.com/vrsandeep/truphotos-go/internal/core"
	"github.com/vrsandeep/truphotos-go/internal/session"
	"github.com/vrsandeep/truphotos-go/internal/timeline"
)

// engineForSession builds a catalog engine for the restored Ready session.
func engineForSession(app *core.App) (*catalog.Engine, error) {
	snap := app.Sessions.Snapshot()
	if snap.State != session.StateReady {
		return nil, fmt.Errorf("no library selected; run 'truphotos libraries --select <id>' first")
	}
	sess := snap.Session
	return catalog.NewEngine(app.Client, catalog.Scope{
		Server:    *sess.SelectedServer,
		UserID:    sess.User.ID,
		Token:     sess.AuthToken,
		LibraryID: sess.SelectedLibrary.ID,
	}, app.Config.Catalog.PageSize, app.Log), nil
}

func newSyncCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the photo catalog for the selected library",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := restoreAuthenticated(cmd.Context(), app); err != nil {
				return err
			}
			engine, err := engineForSession(app)
			if err != nil {
				return err
			}

			if all {
				err = engine.SyncAll(cmd.Context())
			} else {
				err = engine.LoadInitial(cmd.Context())
			}
			if err != nil {
				return err
			}

			state := engine.State()
			fmt.Printf("Fetched %d of %d photos", len(state.Items), state.TotalCount)
			if state.HasMore {
				fmt.Print(" (more available; use --all)")
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "keep paging until the whole catalog is fetched")
	return cmd
}

func newTimelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Print the date-grouped view of the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := restoreAuthenticated(cmd.Context(), app); err != nil {
				return err
			}
			engine, err := engineForSession(app)
			if err != nil {
				return err
			}
			if err := engine.LoadInitial(cmd.Context()); err != nil {
				return err
			}

			state := engine.State()
			for _, bucket := range timeline.Group(state.Items, time.Now()) {
				fmt.Printf("%s (%d)\n", bucket.Label, len(bucket.Items))
				for _, photo := range bucket.Items {
					fmt.Printf("  %s  %s\n", photo.CreatedAt.Local().Format("15:04"), photo.Filename)
				}
			}
			return nil
		},
	}
}
