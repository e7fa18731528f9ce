package main

import (
	"fmt"
	"os"

	"github.com/parthasarathygopu/orca/internal/config"
	"github.com/parthasarathygopu/orca/internal/database"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/repository"
	"github.com/parthasarathygopu/orca/internal/seed"

	"github.com/spf13/cobra"
)

func main() {
	var configPath, dataPath string

	cmd := &cobra.Command{
		Use:          "orca-import",
		Short:        "Import suites, cases and action groups from a JSON fixture",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log.Configure(cfg.Log.Level, cfg.Log.Format)

			db, err := database.Open(cfg.Database, cfg.Log.Level)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			fixture, err := seed.LoadFile(dataPath)
			if err != nil {
				return err
			}
			report, err := seed.Import(cmd.Context(), repository.NewStore(db), fixture)
			if err != nil {
				return err
			}
			log.GetLogger().
				WithField("created", report.Created).
				WithField("skipped", report.Skipped).
				Info("Import completed")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.toml", "path to config file")
	cmd.Flags().StringVar(&dataPath, "data", "examples/fixture.json", "path to fixture JSON file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
