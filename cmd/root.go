package cmd

import (
	"fmt"
	"os"

	"food-index/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "food-index",
	Short: "Food Search Index Service",
	Long: `Food Index serves localized food search over HTTP.
The search index lives in a worker that rebuilds per-locale snapshots from the
database, while replicas coordinate rebuilds through a shared pending set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps for CLI users
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
