package main

import (
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/anonto42/recipe-hub/backend/pkg/config"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema and MongoDB indexes, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg.Log)

			db, err := config.InitDB(ctx, cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			defer db.CloseDB()

			if err := repositories.AutoMigrate(db.Postgres); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			if err := repositories.NewMongoSearchHistoryRepository(db.MongoDB).EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("failed to create search history indexes: %w", err)
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
