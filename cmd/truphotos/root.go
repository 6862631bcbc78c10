package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truphotos",
		Short: "Sync a Jellyfin photo catalog into a local timeline",
		Long: `TruPhotos authenticates against a Jellyfin server, keeps a durable
session, and synchronizes the selected photo library into a chronologically
grouped local view. The serve command exposes the core over a local HTTP and
websocket surface for UI frontends; the remaining commands drive the same
core one-shot from the terminal.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLibrariesCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newTimelineCmd())

	return cmd
}
