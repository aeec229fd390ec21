package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-analyst/internal/config"
)

var purgeCacheCommand = &cobra.Command{
	Use:   "purge-cache",
	Short: "Release expired cache entries",
	Long: `Releases the cache pointers of reports whose validity window has
passed. The reports themselves stay queryable by id.`,
	RunE: runPurgeCacheCmd,
}

var purgeDatabaseURL string

func init() {
	purgeCacheCommand.Flags().StringVar(&purgeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(purgeCacheCommand)
}

func runPurgeCacheCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDatabase(ctx, config.Config{DatabaseURL: purgeDatabaseURL})
	if err != nil {
		return err
	}
	defer database.Close()

	released, err := database.PurgeExpiredCache(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Released %d expired cache entries.\n", released)
	return nil
}
