package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/jot/internal/app"
	"github.com/MrSnakeDoc/jot/internal/config"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/version"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a YAML backup of the notebook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return a.Export(w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Permanently delete trashed notes past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.Purge(context.Background())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d note(s)\n", n)
			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func runServe() error {
	a, err := open()
	if err != nil {
		return err
	}
	return a.Run()
}

func open() (*app.App, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	return app.New(cfg, loggerClient)
}
