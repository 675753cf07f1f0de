package cmd

import (
	"focustracks/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the FocusTracks HTTP server",
	Long:  `Starts the FocusTracks API server: track catalog, submissions, moderation and playlists.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
