package cli

import (
	"context"

	"github.com/spf13/cobra"

	"kanguru-service/internal/config"
	"kanguru-service/internal/content"
	"kanguru-service/internal/infra/postgres"
	"kanguru-service/internal/logger"
)

// NewSeedCmd copies the bundled mock tests into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the bundled mock tests into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	catalog, err := content.Load()
	if err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := RunMigrations(ctx, db, log); err != nil {
		return err
	}
	n, err := postgres.SeedTests(ctx, db, catalog.TestList())
	if err != nil {
		return err
	}
	log.Info().Int("tests", n).Msg("catalog seeded")
	return nil
}
