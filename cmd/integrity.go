package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"food-index/core/storage"
	"food-index/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the database and image storage",
	Long:  `Checks the database schema, the attribute defaults, the image bucket and thumbnail coverage. Prints a JSON report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true, true)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Verify the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false, false)
	},
}

// defaultsCmd represents the integrity defaults command
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Check the attribute defaults row",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false, false)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the thumbnail folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true, false)
	},
}

// thumbnailsCmd represents the integrity thumbnails command
var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "List foods without thumbnails and thumbnails without foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, false, true)
	},
}

func init() {
	integrityCmd.AddCommand(schemaCmd, defaultsCmd, storageCmd, thumbnailsCmd)
	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing thumbnail folder")
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(ctx context.Context, runSchema, runDefaults, runStorage, runThumbnails bool) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	logg := rt.logger
	defer logg.Sync()

	var client storage.Client
	if runStorage || runThumbnails {
		if client, err = storage.NewClient(rt.cfg.Storage); err != nil {
			logg.Warn("Storage unavailable", zap.Error(err))
		}
	}

	svc := integrity.NewService(client, rt.cfg.Storage, rt.db, rt.repo, logg)
	report := make(map[string]any)
	failed := false

	record := func(name string, result any, err error) {
		if err != nil {
			failed = true
			logg.Error("Check failed", zap.String("check", name), zap.Error(err))
			report[name] = map[string]string{"status": "error", "error": err.Error()}
			return
		}
		report[name] = result
	}

	if runSchema {
		res, err := svc.CheckSchema()
		if err == nil && !res.Matched {
			failed = true
		}
		record("schema", res, err)
	}
	if runDefaults {
		res, err := svc.CheckDefaults(ctx)
		if err == nil && !res.Present {
			failed = true
		}
		record("defaults", res, err)
	}
	if runStorage {
		res, err := svc.CheckStorage(ctx)
		if err == nil && !res.PrefixExists {
			if fixFlag {
				logg.Info("Attempting to create thumbnail folder", zap.String("prefix", res.Prefix))
				err = svc.FixStorage(ctx)
				if err == nil {
					res.PrefixExists = true
				}
			} else {
				logg.Warn("Thumbnail folder missing; run with --fix to create it", zap.String("prefix", res.Prefix))
			}
		}
		record("storage", res, err)
	}
	if runThumbnails {
		logg.Info("Checking thumbnails (this might take a while)...")
		res, err := svc.CheckThumbnails(ctx)
		if err == nil {
			logg.Info("Thumbnail check completed", zap.Int("expected", res.Expected), zap.Int("found", res.Found))
		}
		record("thumbnails", res, err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))

	if failed {
		return fmt.Errorf("integrity checks reported problems")
	}
	return nil
}
