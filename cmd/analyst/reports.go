package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-analyst/internal/config"
	"github.com/jonathan/company-analyst/internal/export"
	"github.com/jonathan/company-analyst/internal/types"
)

var reportsCommand = &cobra.Command{
	Use:   "reports [company name]",
	Short: "List stored reports, or show one in full",
	Long: `Without arguments, lists the most recent reports across all companies.
With a company name, lists that company's report history. Use --id to
print one report as markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReportsCmd,
}

var (
	reportsLimit       int
	reportsVerdict     string
	reportsID          int64
	reportsDatabaseURL string
)

func init() {
	reportsCommand.Flags().IntVar(&reportsLimit, "limit", 20, "Maximum number of reports to list")
	reportsCommand.Flags().StringVar(&reportsVerdict, "verdict", "", "Filter by verdict (StrongGo, Go, ConditionalGo, NoGo, StrongNoGo)")
	reportsCommand.Flags().Int64Var(&reportsID, "id", 0, "Print the report with this id as markdown")
	reportsCommand.Flags().StringVar(&reportsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(reportsCommand)
}

func runReportsCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	database, err := connectDatabase(ctx, config.Config{DatabaseURL: reportsDatabaseURL})
	if err != nil {
		return err
	}
	defer database.Close()

	if reportsID != 0 {
		rpt, err := database.GetReportByID(ctx, reportsID)
		if err != nil {
			return err
		}
		if rpt == nil {
			return fmt.Errorf("no report with id %d", reportsID)
		}
		fmt.Fprint(os.Stdout, export.RenderMarkdown(rpt))
		return nil
	}

	if reportsVerdict != "" {
		if _, err := types.ParseVerdict(reportsVerdict); err != nil {
			return err
		}
	}

	var reports []types.Report
	if len(args) == 1 {
		company, err := database.GetCompanyByName(ctx, args[0])
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("unknown company %q", args[0])
		}
		reports, err = database.ListReports(ctx, company.ID, reportsLimit)
		if err != nil {
			return err
		}
	} else {
		reports, err = database.ListRecentReports(ctx, reportsLimit, reportsVerdict)
		if err != nil {
			return err
		}
	}

	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	fmt.Printf("%-6s %-24s %-14s %-6s %-7s %-7s %s\n",
		"ID", "COMPANY", "VERDICT", "SCORE", "PASSED", "CACHED", "GENERATED")
	for _, rpt := range reports {
		cached := "-"
		if rpt.CacheKey != "" {
			cached = "yes"
		}
		fmt.Printf("%-6d %-24s %-14s %-6.2f %-7t %-7s %s\n",
			rpt.ID, truncateName(rpt.CompanyName, 24), rpt.Verdict, rpt.TotalScore,
			rpt.Quality.Passed, cached, rpt.GeneratedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-3] + "..."
}
