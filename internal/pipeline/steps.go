package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/seoscan/internal/audit"
	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/fetcher"
	"github.com/nao1215/seoscan/internal/model"
)

// Step names.
const (
	StepFetch    = "fetch"
	StepParse    = "parse"
	StepEvaluate = "evaluate"
)

// errMissingInput is returned when a step runs before its prerequisite.
var errMissingInput = errors.New("missing input from previous step")

// PageFetcher retrieves a page and its auxiliary files.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

// Evaluator scores a parsed page.
type Evaluator interface {
	Evaluate(ctx context.Context, in *audit.Input) (*model.EvaluationResult, error)
}

// FetchStep downloads the page. Jobs that already carry a Page are left
// untouched.
type FetchStep struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewFetchStep creates a fetch step.
func NewFetchStep(f PageFetcher, logger *slog.Logger) *FetchStep {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FetchStep{fetcher: f, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	if job.Page != nil {
		return nil
	}
	page, err := s.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		return err
	}
	s.logger.Debug("page fetched",
		"url", job.URL,
		"status", page.StatusCode,
		"bytes", len(page.HTML),
		"robots", page.Extras.RobotsTxt != "",
		"sitemap", page.Extras.SitemapXML != "",
	)
	job.Page = page
	return nil
}

// ParseStep parses the fetched markup into a document.
type ParseStep struct{}

// NewParseStep creates a parse step.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return StepParse
}

// Do executes the parse step.
func (s *ParseStep) Do(_ context.Context, job *Job) error {
	if job.Page == nil {
		return fmt.Errorf("%s: %w", StepParse, errMissingInput)
	}
	doc, err := document.Parse(strings.NewReader(job.Page.HTML))
	if err != nil {
		return err
	}
	job.Document = doc
	return nil
}

// EvaluateStep runs the audit engine.
type EvaluateStep struct {
	evaluator Evaluator
}

// NewEvaluateStep creates an evaluate step.
func NewEvaluateStep(e Evaluator) *EvaluateStep {
	return &EvaluateStep{evaluator: e}
}

// Name returns the step name.
func (s *EvaluateStep) Name() string {
	return StepEvaluate
}

// Do executes the evaluate step. Links are resolved against the requested
// URL, and the result carries the requested URL as well.
func (s *EvaluateStep) Do(ctx context.Context, job *Job) error {
	if job.Document == nil || job.Page == nil {
		return fmt.Errorf("%s: %w", StepEvaluate, errMissingInput)
	}
	result, err := s.evaluator.Evaluate(ctx, &audit.Input{
		URL:      job.URL,
		Document: job.Document,
		Extras:   job.Page.Extras,
	})
	if err != nil {
		return err
	}
	job.Result = result
	return nil
}

// NewAuditPipeline builds the standard fetch, parse, evaluate pipeline.
func NewAuditPipeline(f PageFetcher, e Evaluator, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewFetchStep(f, logger),
		NewParseStep(),
		NewEvaluateStep(e),
	)
	return p
}
