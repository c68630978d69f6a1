package cmd

import (
	"fmt"

	"food-index/feature/foods/attributes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// foodCmd shows the inherited attributes of one food.
var foodCmd = &cobra.Command{
	Use:   "food [id]",
	Short: "View the resolved attributes of a food",
	Long:  `Resolves the inheritable attributes of a food through its category ancestry and the global defaults.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		ctx := cmd.Context()

		id := args[0]
		rt.logger.Info("Resolving food attributes...", zap.String("food_id", id))

		own, err := rt.repo.FoodAttributes(ctx, []string{id})
		if err != nil {
			return fmt.Errorf("failed to load food attributes: %w", err)
		}
		parents, err := rt.repo.FoodParentCategories(ctx, []string{id})
		if err != nil {
			return fmt.Errorf("failed to load parent categories: %w", err)
		}
		resolved, err := rt.resolver.ResolveFoodAttributes(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to resolve attributes: %w", err)
		}

		row, hasRow := own[id]
		fmt.Println("\n--- Food Attributes ---")
		fmt.Printf("Food ID:          %s\n", id)
		fmt.Printf("Categories:       %v\n", parents[id])
		if hasRow {
			fmt.Printf("Own row:          %s\n", row)
		} else {
			fmt.Printf("Own row:          (none)\n")
		}
		fmt.Println("-----------------------")
		fmt.Printf("Ready meal:       %v\n", resolved.ReadyMealOption)
		fmt.Printf("Same as before:   %v\n", resolved.SameAsBeforeOption)
		fmt.Printf("Reasonable amount: %d\n", resolved.ReasonableAmount)

		useColor := "\033[32m" // Green
		switch resolved.UseInRecipes {
		case attributes.RegularFoodOnly, attributes.RecipeIngredientOnly:
			useColor = "\033[33m" // Yellow
		}
		fmt.Printf("Use in recipes:   %s%s\033[0m\n", useColor, resolved.UseInRecipes)
		fmt.Println("-----------------------")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(foodCmd)
}
