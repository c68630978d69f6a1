package cmd

import (
	"fmt"

	"food-index/core/cache"
	"food-index/core/config"
	"food-index/core/database"
	"food-index/core/logger"
	"food-index/feature/foods/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedDemo bool

// migrateCmd creates the food and cache tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long:  `Auto-migrates the food tables and the database cache tables. With --seed, a small demo data set is inserted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate food tables: %w", err)
		}
		if err := cache.NewDBStore(db).Migrate(); err != nil {
			return fmt.Errorf("failed to migrate cache tables: %w", err)
		}
		logg.Info("Tables migrated", zap.String("driver", cfg.Database.Driver))

		if seedDemo {
			if err := repository.SeedDemo(db); err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
			logg.Info("Demo data seeded")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&seedDemo, "seed", false, "Insert the demo data set")
	RootCmd.AddCommand(migrateCmd)
}
