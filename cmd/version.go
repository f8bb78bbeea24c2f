package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		info := map[string]string{"app": app, "version": version}
		err := render(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "%s version: %s\n", app, version)
		})
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	addOutputFlag(versionCmd)
}
