package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "url-shortener",
		Short:         "Shorten long URLs and resolve short codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"),
		"path to the YAML config file (env CONFIG_PATH)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newShortenCmd(opts),
		newStatsCmd(opts),
	)

	return cmd
}
