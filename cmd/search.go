package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"food-index/core/storage"
	"food-index/feature/foods"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchLimit     int
	searchRecipe    bool
	searchHidden    bool
	searchJSON      bool
	searchThumbnail bool
)

// searchCmd builds a local index and runs one query against it.
var searchCmd = &cobra.Command{
	Use:   "search [locale] [description]",
	Short: "Run a food search against a freshly built index",
	Long:  `Builds the index in this process, runs one search through the same pipeline as the HTTP API and prints the result.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		ctx := cmd.Context()

		rt.cfg.Index.Mode = "inprocess"
		gateway, err := rt.startIndex(ctx)
		if gateway == nil {
			return err
		}
		defer gateway.Close()
		if err != nil {
			return fmt.Errorf("index build failed: %w", err)
		}

		var thumbnails foods.Thumbnailer
		if searchThumbnail {
			client, err := storage.NewClient(rt.cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to create storage client: %w", err)
			}
			thumbnails = foods.NewThumbnails(client, rt.cfg.Storage, rt.cache, rt.cfg.Cache.ThumbnailsTTL(), rt.logger)
		}

		svc := foods.NewService(gateway, rt.repo, rt.resolver, thumbnails, nil, rt.cfg.Server, rt.logger)
		res, err := svc.Search(ctx, foods.SearchRequest{
			LocaleID:      args[0],
			Description:   args[1],
			Limit:         searchLimit,
			IsRecipe:      searchRecipe,
			IncludeHidden: searchHidden,
		})
		if err != nil {
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		rt.logger.Debug("Search finished", zap.Int("foods", len(res.Foods)), zap.Int("categories", len(res.Categories)))
		fmt.Println("\n--- Food Search ---")
		fmt.Printf("Locale:         %s\n", args[0])
		fmt.Printf("Description:    %s\n", args[1])
		fmt.Printf("Recipe:         %v\n", searchRecipe)
		fmt.Println("-------------------")
		fmt.Printf("Foods (%d):\n", len(res.Foods))
		for _, f := range res.Foods {
			fmt.Printf("- [%s] %-6s %s", f.ID, f.Code, f.Name)
			if f.ThumbnailImageURL != "" {
				fmt.Printf("  (%s)", f.ThumbnailImageURL)
			}
			fmt.Println()
		}
		fmt.Printf("Categories (%d):\n", len(res.Categories))
		for _, c := range res.Categories {
			fmt.Printf("- [%s] %-6s %s\n", c.ID, c.Code, c.Name)
		}
		fmt.Println("-------------------")
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (server default when 0)")
	searchCmd.Flags().BoolVar(&searchRecipe, "recipe", false, "Search for recipe ingredients")
	searchCmd.Flags().BoolVar(&searchHidden, "hidden", false, "Include hidden categories")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the response as JSON")
	searchCmd.Flags().BoolVar(&searchThumbnail, "thumbnails", false, "Look up thumbnails in storage")
	RootCmd.AddCommand(searchCmd)
}
