package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-analyst/internal/config"
	"github.com/jonathan/company-analyst/internal/db"
	"github.com/jonathan/company-analyst/internal/export"
	"github.com/jonathan/company-analyst/internal/llm"
	"github.com/jonathan/company-analyst/internal/pipeline"
	"github.com/jonathan/company-analyst/internal/report"
	"github.com/jonathan/company-analyst/internal/types"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <company name>",
	Short: "Generate (or fetch from cache) an evaluation report for a company",
	Long: `Collects the stored evidence for a company, builds a bounded evaluation
context, and produces a structured go/no-go report through the configured
LLM provider. Identical requests within the cache window are served from
the report cache without calling the provider.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath   string
	analyzeCompanyID    int64
	analyzeJobPostingID int64
	analyzeNoCache      bool
	analyzeCacheDays    int
	analyzeWeights      string
	analyzeProfilePath  string
	analyzeProvider     string
	analyzeModel        string
	analyzeAPIKey       string
	analyzeDatabaseURL  string
	analyzeExportFormat string
	analyzeExportDir    string
	analyzePromptOnly   bool
	analyzeNoSave       bool
	analyzeVerbose      bool
)

func init() {
	// Config file flag (processed first)
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCommand.Flags().Int64Var(&analyzeCompanyID, "company-id", 0, "Company id (skips name lookup)")
	analyzeCommand.Flags().Int64Var(&analyzeJobPostingID, "job-posting-id", 0, "Focus the report on one job posting")
	analyzeCommand.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Skip the cache lookup and force fresh generation")
	analyzeCommand.Flags().IntVar(&analyzeCacheDays, "cache-days", 0, "Cache validity window in days (1-90)")
	analyzeCommand.Flags().StringVarP(&analyzeWeights, "weights", "w", "", `Priority weights, e.g. "growth:30,stability:20,compensation:25,worklife:10,rolefit:15"`)
	analyzeCommand.Flags().StringVar(&analyzeProfilePath, "profile", "", "Path to applicant profile JSON for personalized evaluation")
	analyzeCommand.Flags().StringVarP(&analyzeProvider, "provider", "p", "", "LLM provider: gemini, openai, or anthropic")
	analyzeCommand.Flags().StringVar(&analyzeModel, "model", "", "Provider model override")
	analyzeCommand.Flags().StringVar(&analyzeExportFormat, "export", "", "Export the report as an artifact: markdown or html")
	analyzeCommand.Flags().StringVar(&analyzeExportDir, "export-dir", "", "Directory for exported artifacts (default current directory)")
	analyzeCommand.Flags().BoolVar(&analyzePromptOnly, "prompt-only", false, "Build and print the provider prompt without calling the provider")
	analyzeCommand.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Generate the report without persisting it to the store")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from the provider's env var
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Provider API key (optional, defaults to the provider's env var)")

	analyzeCommand.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd, analyzeConfigPath)
	if err != nil {
		return err
	}

	provider := llm.Provider(cfg.Provider)
	if provider == "" {
		provider = llm.ProviderGemini
	}

	database, err := connectDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	req, err := buildRequest(args[0], cfg)
	if err != nil {
		return err
	}

	// A prompt-only dry run never reaches the provider, so it needs no
	// credentials.
	if analyzePromptOnly {
		runner := pipeline.NewRunner(database, report.NewGenerator(nil, string(provider)))
		result, err := runner.Run(ctx, pipeline.RunOptions{
			Request:    req,
			PromptOnly: true,
			Verbose:    cfg.Verbose,
		})
		if err != nil {
			return err
		}
		fmt.Println(result.Prompt)
		return nil
	}

	// Resolve the provider's credentials.
	llmCfg := llm.DefaultConfig(provider)
	if cfg.Model != "" {
		llmCfg.Model = cfg.Model
	}
	llmCfg.APIKey = analyzeAPIKey
	if llmCfg.APIKey == "" {
		llmCfg.APIKey = cfg.APIKeyFor(provider)
	}
	if llmCfg.APIKey == "" {
		return fmt.Errorf("no API key for provider %s (use --api-key, config, or the provider's env var)", provider)
	}

	client, err := llm.NewClient(ctx, llmCfg)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", provider, err)
	}
	defer func() { _ = client.Close() }()

	runner := pipeline.NewRunner(database, report.NewGenerator(client, string(provider)))
	result, err := runner.Run(ctx, pipeline.RunOptions{
		Request:   req,
		SkipStore: analyzeNoSave,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		return err
	}

	printResultSummary(result)

	if analyzeExportFormat != "" {
		dir := analyzeExportDir
		if dir == "" {
			dir = cfg.ExportDir
		}
		path, err := export.WriteFile(result.Report, analyzeExportFormat, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported report to %s\n", path)
	}
	return nil
}

// loadMergedConfig loads the optional config file and applies CLI
// overrides for flags that were explicitly set.
func loadMergedConfig(cmd *cobra.Command, path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if analyzeVerbose {
			fmt.Printf("Loaded config from: %s\n", path)
		}
	}

	if cmd.Flags().Changed("provider") {
		cfg.Provider = analyzeProvider
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = analyzeModel
	}
	if cmd.Flags().Changed("cache-days") {
		cfg.CacheDays = analyzeCacheDays
	}
	if cmd.Flags().Changed("weights") {
		cfg.Weights = analyzeWeights
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = analyzeDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{Provider: string(llm.ProviderGemini)})
	return cfg, cfg.Validate()
}

// buildRequest assembles the report request from CLI inputs.
func buildRequest(companyName string, cfg config.Config) (types.ReportRequest, error) {
	req := types.ReportRequest{
		CompanyName: companyName,
		CompanyID:   analyzeCompanyID,
		BypassCache: analyzeNoCache,
		CacheDays:   cfg.CacheDays,
		Weights:     types.DefaultWeights(),
	}

	if analyzeJobPostingID != 0 {
		id := analyzeJobPostingID
		req.JobPostingID = &id
	}

	if cfg.Weights != "" {
		weights, err := types.ParseWeights(cfg.Weights)
		if err != nil {
			return req, fmt.Errorf("invalid --weights: %w", err)
		}
		req.Weights = weights
	}

	if analyzeProfilePath != "" {
		data, err := os.ReadFile(analyzeProfilePath)
		if err != nil {
			return req, fmt.Errorf("failed to read applicant profile: %w", err)
		}
		var profile types.ApplicantProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return req, fmt.Errorf("failed to parse applicant profile: %w", err)
		}
		req.Applicant = &profile
	}

	return req, req.Validate()
}

// connectDatabase resolves the connection URL and ensures the report
// schema exists.
func connectDatabase(ctx context.Context, cfg config.Config) (*db.DB, error) {
	url := cfg.DatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func printResultSummary(result *pipeline.Result) {
	rpt := result.Report
	fmt.Println()
	switch {
	case result.FromCache:
		fmt.Printf("Served from cache (generated %s).\n", rpt.GeneratedAt.Format("2006-01-02 15:04"))
	case result.Degraded:
		fmt.Printf("Served previous passing report (generated %s) because fresh generation failed.\n",
			rpt.GeneratedAt.Format("2006-01-02 15:04"))
	case rpt.ID == 0:
		fmt.Println("Report generated; persistence skipped.")
	default:
		fmt.Printf("Report #%d stored.\n", rpt.ID)
	}

	fmt.Printf("\n%s: %s (%.2f/5)\n", rpt.CompanyName, rpt.Verdict, rpt.TotalScore)
	for _, axis := range types.AxisNames() {
		fmt.Printf("  %-13s %.1f\n", axis, rpt.Scores[axis])
	}
	if body, ok := rpt.Section(types.SectionExecutiveSummary); ok {
		fmt.Printf("\n%s\n", body)
	}
	if !rpt.Quality.Passed {
		fmt.Printf("\n⚠️ This report failed %d quality check(s); treat it as unreliable.\n",
			len(rpt.Quality.Violations))
	}
}
