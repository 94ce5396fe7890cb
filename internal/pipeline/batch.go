package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of audits run at once. Each audit may
// drive a browser tab, so this stays small.
const DefaultConcurrency = 3

// BatchProcessor audits many URLs concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each URL.
	pipelineFactory func() *Pipeline

	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent audits.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.New(slog.DiscardHandler)
	}
	return bp
}

// ProcessBatch audits every URL and returns one job per URL in input order.
// A failed audit is recorded in its job and does not stop the others; the
// returned error is only the context's.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*Job, error) {
	jobs := make([]*Job, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(job *Job, index int) {
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback audits every URL and calls callback as each one
// completes. The callback runs on the worker goroutine, so it must be safe
// for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch",
		"total", len(urls),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(url)
			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("audit failed", "url", url, "error", err)
			} else {
				bp.logger.Debug("audit completed", "url", url)
			}
			callback(job, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"total", len(urls),
		"elapsed", time.Since(start),
	)
	return err
}
