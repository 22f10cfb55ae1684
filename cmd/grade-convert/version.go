// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of grade-convert",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "grade-convert %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
