package cmd

import (
	"fmt"

	"food-index/core/pubsub"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var purgeCache bool

// reconcileCmd runs one reconciliation pass from outside the servers.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Report pending rebuilds and re-announce them to the replicas",
	Long: `Lists the locales waiting in the shared pending-rebuild set and publishes a
fresh rebuild notice for them, so replicas that missed the original notice
drain the set now instead of at their next reconciliation tick.

With --purge-cache, expired entries of the database cache are removed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		rt.sharedStoreWarning()
		ctx := cmd.Context()

		if purgeCache {
			if p := rt.purger(); p != nil {
				n, err := p.PurgeExpired(ctx)
				if err != nil {
					return fmt.Errorf("failed to purge cache: %w", err)
				}
				rt.logger.Info("Expired cache entries purged", zap.Int64("count", n))
			} else {
				rt.logger.Info("Cache driver has nothing to purge", zap.String("driver", rt.cfg.Cache.Driver))
			}
		}

		transport, err := pubsub.New(&rt.cfg.PubSub, "food-index-cli")
		if err != nil {
			return fmt.Errorf("failed to connect pubsub: %w", err)
		}
		defer transport.Close()

		bus := rt.newBus(transport, nil, "cli")
		pending, err := bus.Pending(ctx)
		if err != nil {
			return fmt.Errorf("failed to read pending rebuilds: %w", err)
		}

		rt.logger.Info("Reconciliation report", zap.Int("pending", len(pending)), zap.Strings("locales", pending))
		if len(pending) == 0 {
			rt.logger.Info("Nothing pending.")
			return nil
		}

		if err := bus.Notify(ctx, pending...); err != nil {
			return err
		}
		rt.logger.Info("Rebuild notice re-published", zap.Strings("locales", pending))
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&purgeCache, "purge-cache", false, "Remove expired database cache entries")
	RootCmd.AddCommand(reconcileCmd)
}
