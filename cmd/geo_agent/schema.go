package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/geo-visibility/internal/schemas"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the AnalysisResult JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		schema, err := schemas.AnalysisSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), schema)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
