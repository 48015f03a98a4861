package main

import (
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	return app.Run(cmd.Context(), opts.cfg, app.NewLogger(opts.cfg))
}
