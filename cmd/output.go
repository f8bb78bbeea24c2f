package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputTable, "output format: table or json")
}

// render writes v as indented JSON when asked to, otherwise hands off to table.
func render(cmd *cobra.Command, v any, table func(io.Writer)) error {
	w := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("output")
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputTable, "":
		table(w)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
