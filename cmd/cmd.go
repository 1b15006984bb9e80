package cmd

import (
	"github.com/spf13/cobra"

	apicmd "github.com/tenderwatch/crawler/cmd/api"
	"github.com/tenderwatch/crawler/cmd/crawl"
	"github.com/tenderwatch/crawler/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "tenderwatch"}
	rootCmd.AddCommand(crawl.CrawlCmd, apicmd.APICmd, versionCmd)
	rootCmd.Execute()
}
