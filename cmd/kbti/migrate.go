package main

import (
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/config"
	"github.com/CPSG-31/kbti-backend/internal/database"
	"github.com/CPSG-31/kbti-backend/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, cfg, func(mg *database.Migrator) error {
				return mg.Down(steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, cfg, func(mg *database.Migrator) error {
					return mg.Up()
				})
			},
		},
		downCmd,
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, cfg, func(mg *database.Migrator) error {
					v, dirty, err := mg.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

// withMigrator connects to the database, runs fn and reports the resulting schema version
func withMigrator(cmd *cobra.Command, cfg *config.Config, fn func(mg *database.Migrator) error) error {
	db, err := database.Connect(cmd.Context(), cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	mg, err := database.NewMigrator(db, cfg.MigrationsPath)
	if err != nil {
		return err
	}

	if err := fn(mg); err != nil {
		return err
	}

	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	logger.Logger.Info("migrations done", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}
