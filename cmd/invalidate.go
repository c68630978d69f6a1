package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"food-index/core/pubsub"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	invalidateAll bool
	yesConfirm    bool
)

// invalidateCmd records that food data changed and signals every replica.
var invalidateCmd = &cobra.Command{
	Use:   "invalidate [locale...]",
	Short: "Mark locales for rebuild on every replica",
	Long: `Adds locales to the shared pending-rebuild set and publishes a rebuild notice.
Every running replica drains the set and rebuilds asynchronously.

Examples:
  # Rebuild one locale
  invalidate en_GB

  # Rebuild every locale (asks for confirmation)
  invalidate --all

  # Non-interactive
  invalidate --all --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !invalidateAll {
			return fmt.Errorf("name at least one locale or pass --all")
		}
		if len(args) > 0 && invalidateAll {
			return fmt.Errorf("--all does not take locales")
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		rt.sharedStoreWarning()

		ctx := cmd.Context()
		locales := args
		if len(locales) > 0 {
			if locales, err = rt.repo.Canonicalize(ctx, locales); err != nil {
				return err
			}
		} else if !confirmAction("Type 'yes' to rebuild every locale on every replica: ") {
			rt.logger.Warn("Operation cancelled by user. Nothing was invalidated.")
			return nil
		}

		transport, err := pubsub.New(&rt.cfg.PubSub, "food-index-cli")
		if err != nil {
			return fmt.Errorf("failed to connect pubsub: %w", err)
		}
		defer transport.Close()

		bus := rt.newBus(transport, nil, "cli")
		if err := bus.Notify(ctx, locales...); err != nil {
			return err
		}

		rt.logger.Info("Invalidation recorded", zap.Strings("locales", locales), zap.Bool("all", invalidateAll))
		return nil
	},
}

func init() {
	invalidateCmd.Flags().BoolVar(&invalidateAll, "all", false, "Invalidate every locale")
	invalidateCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm (non-interactive)")
	RootCmd.AddCommand(invalidateCmd)
}

// confirmAction prompts the user for confirmation or uses --yes flag.
func confirmAction(prompt string) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  " + prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
