package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load video transcripts into the vector store",
		Long:  "Reads transcript exports, embeds each transcript and upserts it into the video_transcripts table.",
	}

	cmd.AddCommand(newCSVCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())
	return cmd
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
