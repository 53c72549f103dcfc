package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if format == "json" {
			out, err := formatJSON(map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
			})
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Println(version)
		return nil
	},
}

func init() {
	versionCmd.Flags().StringP("output", "o", "text", "Output format (json, text)")
	rootCmd.AddCommand(versionCmd)
}
