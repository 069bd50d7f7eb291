package cmd

import (
	"rhythmfm/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RhythmFM HTTP server",
	Long:  `Starts the RhythmFM API server serving the home feed, catalog, playlists and uploads.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
