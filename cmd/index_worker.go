package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"food-index/core/config"
	"food-index/core/database"
	"food-index/core/logger"
	"food-index/feature/foods/index"
	"food-index/feature/foods/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// indexWorkerCmd runs the index worker over stdin/stdout. It is started by
// "start" when index.mode is "process".
var indexWorkerCmd = &cobra.Command{
	Use:    "index-worker",
	Short:  "Run the search index worker on stdin/stdout",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// stdout carries the protocol
		logg, err := logger.NewWorker(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()
		logg = logger.Component(logg, "index-worker").With(zap.Int("pid", os.Getpid()))

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		worker := index.NewWorker(index.StdioConn(), repository.New(db).WithLogger(logg), logg)
		return worker.Run(ctx)
	},
}

func init() {
	RootCmd.AddCommand(indexWorkerCmd)
}
