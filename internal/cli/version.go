package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raveheart1/hed/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		if build.IsDevBuild() {
			fmt.Fprintf(cmd.OutOrStdout(), "hed %s\n", build.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "hed %s (commit %s, built %s)\n",
			build.Version, build.Commit, build.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
