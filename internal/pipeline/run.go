// Package pipeline provides the high-level orchestration for producing a
// company evaluation report: evidence collection, context building, cache
// mediation, generation, quality gating, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/company-analyst/internal/cache"
	"github.com/jonathan/company-analyst/internal/evidence"
	"github.com/jonathan/company-analyst/internal/observability"
	"github.com/jonathan/company-analyst/internal/promptctx"
	"github.com/jonathan/company-analyst/internal/quality"
	"github.com/jonathan/company-analyst/internal/report"
	"github.com/jonathan/company-analyst/internal/types"
)

// Progress step and category names emitted through ProgressCallback.
const (
	StepEvidence = "evidence_bundle"
	StepContext  = "evaluation_context"
	StepCacheHit = "cache_hit"
	StepReport   = "report"
	StepStored   = "report_stored"

	CategoryCollection = "collection"
	CategoryGeneration = "generation"
	CategoryQuality    = "quality"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Store is the persistence surface the pipeline needs: evidence reads
// plus report reads and writes.
type Store interface {
	evidence.Store
	GetReportByCacheKey(ctx context.Context, cacheKey string) (*types.Report, error)
	InsertReport(ctx context.Context, report *types.Report) (int64, error)
	LatestReport(ctx context.Context, companyID int64, passedOnly bool) (*types.Report, error)
}

// generator abstracts report generation so tests can swap the provider out.
type generator interface {
	Generate(ctx context.Context, in report.Input) (*types.Report, error)
	Prompt(in report.Input) (string, error)
}

// RunOptions holds configuration for one pipeline run
type RunOptions struct {
	Request types.ReportRequest

	// PromptOnly stops the run after the provider prompt is built. No
	// provider call is made and nothing is persisted.
	PromptOnly bool
	// SkipStore generates and gates the report but does not persist it,
	// so it can never claim the cache slot.
	SkipStore bool

	Verbose        bool
	OnProgress     ProgressCallback
	OnReportStored func(rpt *types.Report)
}

// Result is the outcome of a pipeline run.
type Result struct {
	Report    *types.Report
	CacheKey  string
	FromCache bool
	// Degraded is set when fresh generation failed and the latest
	// passing report was served instead.
	Degraded bool
	// Prompt carries the built provider prompt on a PromptOnly run;
	// Report is nil in that case.
	Prompt string
}

// Runner wires the pipeline stages together. It is safe for concurrent
// use; identical in-flight requests share a single generation.
type Runner struct {
	store Store
	gen   generator
	cache *cache.Manager
	out   io.Writer
}

// NewRunner creates a pipeline runner over a store and a generator.
func NewRunner(store Store, gen generator) *Runner {
	return &Runner{
		store: store,
		gen:   gen,
		cache: cache.NewManager(store),
		out:   os.Stdout,
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// Run executes the full report pipeline for one request.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	req := opts.Request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	printer := observability.NewPrinter(r.out)

	// Step 1: collect evidence for the company.
	fmt.Fprintf(r.out, "Step 1/5: Collecting evidence for %s...\n", req.CompanyName)
	bundle, err := evidence.Collect(ctx, r.store, evidence.CollectOptions{
		CompanyID:    req.CompanyID,
		CompanyName:  req.CompanyName,
		JobPostingID: req.JobPostingID,
	})
	if err != nil {
		return nil, fmt.Errorf("evidence collection failed: %w", err)
	}
	manifest := bundle.Manifest()
	if opts.Verbose {
		printer.PrintEvidenceSummary(bundle.Company.Name, manifest)
	}
	emitProgress(&opts, StepEvidence, CategoryCollection,
		fmt.Sprintf("Collected %d evidence records", manifest.Total()), manifest)

	// Step 2: build the bounded evaluation context.
	fmt.Fprintf(r.out, "Step 2/5: Building evaluation context...\n")
	evalCtx, err := promptctx.Build(bundle, promptctx.Options{
		Weights:   req.Weights,
		Applicant: req.Applicant,
	})
	if err != nil {
		return nil, fmt.Errorf("context building failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintContextSummary(len(evalCtx.Facts), len(evalCtx.Text), evalCtx.Truncated, evalCtx.Fingerprint)
	}
	emitProgress(&opts, StepContext, CategoryCollection,
		fmt.Sprintf("Built context with %d facts", len(evalCtx.Facts)), nil)

	key := cache.Key(bundle.Company.ID, req.JobPostingID, req.Weights, evalCtx.Fingerprint)

	// A prompt-only run stops here: hand back the prompt that would be
	// sent without calling the provider or touching the store.
	if opts.PromptOnly {
		prompt, err := r.gen.Prompt(report.Input{
			CompanyID:    bundle.Company.ID,
			CompanyName:  bundle.Company.Name,
			JobPostingID: req.JobPostingID,
			Context:      evalCtx,
			Weights:      req.Weights,
			Applicant:    req.Applicant,
		})
		if err != nil {
			return nil, fmt.Errorf("prompt building failed: %w", err)
		}
		fmt.Fprintf(r.out, "Prompt built (%d chars); provider call skipped.\n", len(prompt))
		return &Result{Prompt: prompt, CacheKey: key}, nil
	}

	// Step 3: consult the cache. A bypass skips the lookup but the fresh
	// report still takes over the cache slot afterwards.
	if !req.BypassCache {
		fmt.Fprintf(r.out, "Step 3/5: Checking report cache...\n")
		cached, err := r.cache.Lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			fmt.Fprintf(r.out, "Cache hit: serving report generated at %s.\n",
				cached.GeneratedAt.Format("2006-01-02 15:04"))
			emitProgress(&opts, StepCacheHit, CategoryGeneration, "Served cached report", nil)
			return &Result{Report: cached, CacheKey: key, FromCache: true}, nil
		}
	} else {
		fmt.Fprintf(r.out, "Step 3/5: Cache bypassed by request.\n")
	}

	// Steps 4-5 run under the key's singleflight slot so concurrent
	// identical requests share one generation.
	rpt, err := r.cache.Do(key, func() (*types.Report, error) {
		return r.generateAndStore(ctx, &opts, key, bundle, evalCtx)
	})
	if err != nil {
		return r.fallback(ctx, &opts, bundle.Company.ID, key, err)
	}
	return &Result{Report: rpt, CacheKey: key}, nil
}

// generateAndStore runs generation, the quality gate, and persistence.
// Reports that fail the gate are persisted for audit but never claim the
// cache slot.
func (r *Runner) generateAndStore(ctx context.Context, opts *RunOptions, key string,
	bundle *types.EvidenceBundle, evalCtx *promptctx.Context) (*types.Report, error) {
	req := opts.Request

	fmt.Fprintf(r.out, "Step 4/5: Generating report...\n")
	rpt, err := r.gen.Generate(ctx, report.Input{
		CompanyID:    bundle.Company.ID,
		CompanyName:  bundle.Company.Name,
		JobPostingID: req.JobPostingID,
		Context:      evalCtx,
		Weights:      req.Weights,
		Applicant:    req.Applicant,
	})
	if err != nil {
		return nil, err
	}
	emitProgress(opts, StepReport, CategoryGeneration,
		fmt.Sprintf("Generated report with verdict %s", rpt.Verdict), nil)

	rpt.Quality = quality.Evaluate(rpt, evalCtx.FactIDs())
	if opts.Verbose {
		printer := observability.NewPrinter(r.out)
		printer.PrintScorecard(rpt)
		printer.PrintHighlights(rpt)
		printer.PrintViolations(&types.Violations{Violations: rpt.Quality.Violations})
	}
	if !rpt.Quality.Passed {
		fmt.Fprintf(r.out, "⚠️ Report failed quality checks (%d violations); storing for audit only.\n",
			len(rpt.Quality.Violations))
	}

	if opts.SkipStore {
		fmt.Fprintf(r.out, "Step 5/5: Persistence skipped by request.\n")
		return rpt, nil
	}

	fmt.Fprintf(r.out, "Step 5/5: Storing report...\n")
	if _, err := r.cache.Store(ctx, key, rpt, req.CacheDays); err != nil {
		return nil, err
	}
	emitProgress(opts, StepStored, CategoryQuality,
		fmt.Sprintf("Stored report %d", rpt.ID), nil)

	if opts.OnReportStored != nil {
		hook := opts.OnReportStored
		stored := rpt
		go hook(stored)
	}
	return rpt, nil
}

// fallback serves the latest passing report when fresh generation failed.
// The original failure is still surfaced when no fallback exists.
func (r *Runner) fallback(ctx context.Context, opts *RunOptions, companyID int64, key string, genErr error) (*Result, error) {
	// Insufficient evidence and oversized contexts are request problems,
	// not provider problems; a stale report would mask them.
	if errors.Is(genErr, evidence.ErrInsufficientEvidence) || errors.Is(genErr, promptctx.ErrContextTooLarge) {
		return nil, genErr
	}

	latest, err := r.store.LatestReport(ctx, companyID, true)
	if err != nil || latest == nil {
		return nil, fmt.Errorf("report generation failed: %w", genErr)
	}

	fmt.Fprintf(r.out, "⚠️ Generation failed (%v); serving latest passing report from %s.\n",
		genErr, latest.GeneratedAt.Format("2006-01-02"))
	emitProgress(opts, StepReport, CategoryGeneration, "Served degraded fallback report", nil)
	return &Result{Report: latest, CacheKey: key, Degraded: true}, nil
}
