package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/fetcher"
	"github.com/nao1215/seoscan/internal/model"
)

// Auditor audits URLs end to end.
type Auditor struct {
	fetcher     PageFetcher
	evaluator   Evaluator
	logger      *slog.Logger
	concurrency int
}

// AuditorOption configures an Auditor.
type AuditorOption func(*Auditor)

// WithAuditorLogger sets the logger.
func WithAuditorLogger(l *slog.Logger) AuditorOption {
	return func(a *Auditor) { a.logger = l }
}

// WithAuditorConcurrency sets the batch concurrency.
func WithAuditorConcurrency(n int) AuditorOption {
	return func(a *Auditor) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAuditor creates an Auditor.
func NewAuditor(f PageFetcher, e Evaluator, opts ...AuditorOption) *Auditor {
	a := &Auditor{
		fetcher:     f,
		evaluator:   e,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Pipeline returns a fresh audit pipeline.
func (a *Auditor) Pipeline() *Pipeline {
	return NewAuditPipeline(a.fetcher, a.evaluator, a.logger)
}

// Audit fetches, parses, and evaluates url.
func (a *Auditor) Audit(ctx context.Context, url string) (*model.EvaluationResult, error) {
	job := NewJob(url)
	if err := a.Pipeline().Execute(ctx, job); err != nil {
		return nil, err
	}
	return job.Result, nil
}

// AuditHTML evaluates markup that was obtained elsewhere. Extras in page
// are used as-is; nothing is fetched.
func (a *Auditor) AuditHTML(ctx context.Context, page *fetcher.Page) (*model.EvaluationResult, error) {
	job := NewJob(page.URL)
	job.Page = page
	if err := a.Pipeline().Execute(ctx, job); err != nil {
		return nil, err
	}
	return job.Result, nil
}

// AuditBatch audits every URL with bounded concurrency. Results are in
// input order; failed audits have Err set.
func (a *Auditor) AuditBatch(ctx context.Context, urls []string) ([]*Job, error) {
	bp := NewBatchProcessor(a.Pipeline,
		WithConcurrency(a.concurrency),
		WithBatchLogger(a.logger),
	)
	return bp.ProcessBatch(ctx, urls)
}

// Compare audits both URLs concurrently and pairs the results.
func (a *Auditor) Compare(ctx context.Context, primaryURL, competitorURL string) (*model.ComparisonResult, error) {
	var primary, competitor *model.EvaluationResult

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := a.Audit(ctx, primaryURL)
		if err != nil {
			return fmt.Errorf("primary: %w", err)
		}
		primary = r
		return nil
	})
	g.Go(func() error {
		r, err := a.Audit(ctx, competitorURL)
		if err != nil {
			return fmt.Errorf("competitor: %w", err)
		}
		competitor = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return compare.New(primary, competitor), nil
}
