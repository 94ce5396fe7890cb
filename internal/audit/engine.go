// Package audit is the evaluation entry point. It runs the rule set over a
// document, optionally folds in browser performance metrics, and scores the
// result.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
	"github.com/nao1215/seoscan/internal/rules"
	"github.com/nao1215/seoscan/internal/score"
)

// Input is what the engine evaluates.
type Input struct {
	URL      string
	Document document.Document
	Extras   rules.Extras
}

// Engine evaluates pages. It holds no per-page state and is safe for
// concurrent use as long as its sampler is.
type Engine struct {
	rules   *rules.RuleSet
	sampler perf.Sampler
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRuleSet replaces the default rule set.
func WithRuleSet(rs *rules.RuleSet) Option {
	return func(e *Engine) { e.rules = rs }
}

// WithSampler enables performance sampling.
func WithSampler(s perf.Sampler) Option {
	return func(e *Engine) { e.sampler = s }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine with every built-in rule and no sampler.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: rules.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SamplingEnabled reports whether Evaluate measures performance.
func (e *Engine) SamplingEnabled() bool {
	return e.sampler != nil
}

// Evaluate runs the rules and, when a sampler is configured, measures the
// page in a browser. A sampler failure fails the evaluation.
func (e *Engine) Evaluate(ctx context.Context, in *Input) (*model.EvaluationResult, error) {
	var sample *perf.Sample
	if e.sampler != nil {
		s, err := e.sampler.Sample(ctx, in.URL)
		if err != nil {
			return nil, fmt.Errorf("performance sampling failed for %s: %w", in.URL, err)
		}
		sample = s
	}
	return e.EvaluateWithSample(ctx, in, sample)
}

// EvaluateWithSample evaluates with an already measured sample, or without
// performance data when sample is nil.
func (e *Engine) EvaluateWithSample(ctx context.Context, in *Input, sample *perf.Sample) (*model.EvaluationResult, error) {
	findings, err := e.rules.Evaluate(ctx, &rules.Input{
		Document: in.Document,
		URL:      in.URL,
		Extras:   in.Extras,
	})
	if err != nil {
		return nil, err
	}

	result := &model.EvaluationResult{
		URL:       in.URL,
		Findings:  findings,
		Timestamp: e.now().UTC(),
	}
	if sample != nil {
		result.Perf = perf.Normalize(*sample)
		result.Findings = append(result.Findings, perf.Findings(result.Perf)...)
	}
	result.Score = score.Compute(result.Findings)
	return result, nil
}
