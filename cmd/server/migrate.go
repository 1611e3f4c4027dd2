package main

import (
	"errors"

	"github.com/St1cky1/task-service/internal/config"
	"github.com/St1cky1/task-service/internal/infrastructure/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	run := func(action func(dbURL string, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if cfg.Storage.PostgresURL == "" {
				return errors.New("storage.postgres_url is not set")
			}
			return action(cfg.Storage.PostgresURL, cmd)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(dbURL string, cmd *cobra.Command) error {
				if err := migrations.Up(dbURL); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: run(func(dbURL string, cmd *cobra.Command) error {
				if err := migrations.Down(dbURL); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: run(func(dbURL string, cmd *cobra.Command) error {
				version, dirty, err := migrations.Version(dbURL)
				if err != nil {
					return err
				}
				cmd.Printf("version %d (dirty: %t)\n", version, dirty)
				return nil
			}),
		},
	)
	return cmd
}
