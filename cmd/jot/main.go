package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "jot",
		Short: "A small notebook service with categories, favorites and a trash",
		// No subcommand means serve.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newExportCommand(),
		newPurgeCommand(),
		newVersionCommand(),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("❌ jot failed: %v", err)
	}
}
