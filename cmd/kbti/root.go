package main

import (
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/config"
	"github.com/CPSG-31/kbti-backend/internal/logger"
	"github.com/spf13/cobra"
)

// rootCommand creates the kbti command with its subcommands
func rootCommand() *cobra.Command {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           "kbti",
		Short:         "KBTI glossary service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Configuration and logging are not needed to print the version
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Init(loaded.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		*cfg = *loaded
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logger.Sync()
	}

	rootCmd.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
		versionCommand(),
	)

	return rootCmd
}
