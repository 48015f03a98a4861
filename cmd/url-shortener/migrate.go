package main

import (
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := postgres.RunMigrations(opts.cfg.MigrationsPath, opts.cfg.Postgres.DSN()); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := postgres.RollbackMigrations(opts.cfg.MigrationsPath, opts.cfg.Postgres.DSN()); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			},
		},
	)

	return cmd
}
