package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-analyst/internal/config"
	"github.com/jonathan/company-analyst/internal/db"
	"github.com/jonathan/company-analyst/internal/evidence"
	"github.com/jonathan/company-analyst/internal/observability"
)

var summaryCommand = &cobra.Command{
	Use:   "summary [company name]",
	Short: "Show evidence availability for a company, or aggregate report statistics",
	Long: `Without arguments, prints aggregate statistics over all stored reports.
With a company name, prints the per-source evidence counts available for
analysis so you can judge coverage before running analyze.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummaryCmd,
}

var summaryDatabaseURL string

func init() {
	summaryCommand.Flags().StringVar(&summaryDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(summaryCommand)
}

func runSummaryCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	database, err := connectDatabase(ctx, config.Config{DatabaseURL: summaryDatabaseURL})
	if err != nil {
		return err
	}
	defer database.Close()

	if len(args) == 1 {
		return printCompanySummary(ctx, database, args[0])
	}
	return printStoreStatistics(ctx, database)
}

func printCompanySummary(ctx context.Context, database *db.DB, companyName string) error {
	bundle, err := evidence.Collect(ctx, database, evidence.CollectOptions{CompanyName: companyName})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintEvidenceSummary(bundle.Company.Name, bundle.Manifest())

	if avg := bundle.AvgReviewRating(); avg > 0 {
		fmt.Printf("Average review rating: %.1f/5.0\n", avg)
	}
	if lo, hi := bundle.SalaryRange(); hi > 0 {
		fmt.Printf("Reported salaries:     %d to %d manwon/year\n", lo, hi)
	}
	return nil
}

func printStoreStatistics(ctx context.Context, database *db.DB) error {
	stats, err := database.GetStatistics(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Reports stored:    %d\n", stats.TotalReports)
	fmt.Printf("Average score:     %.2f\n", stats.AvgTotalScore)
	fmt.Printf("Quality pass rate: %.1f%% (%d passed)\n", stats.QualityPassRate, stats.QualityPassed)

	if len(stats.ByVerdict) > 0 {
		fmt.Println("\nBy verdict:")
		verdicts := make([]string, 0, len(stats.ByVerdict))
		for v := range stats.ByVerdict {
			verdicts = append(verdicts, v)
		}
		sort.Strings(verdicts)
		for _, v := range verdicts {
			fmt.Printf("  %-14s %d\n", v, stats.ByVerdict[v])
		}
	}
	return nil
}
