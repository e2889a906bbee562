package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/carsearch/internal/search"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources carsearch can query",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range search.NewRegistry().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
