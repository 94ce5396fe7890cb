package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
	"github.com/nao1215/seoscan/internal/rules"
)

// nearlyCompletePage lacks an h1, a description, and one image alt.
const nearlyCompletePage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>A Complete Guide to Writing Pages That Rank Well</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="canonical" href="https://example.com/">
<meta property="og:title" content="t">
<meta property="og:description" content="d">
<meta property="og:image" content="i">
<meta property="og:url" content="u">
<meta property="og:type" content="website">
<meta name="twitter:card" content="summary">
<meta name="twitter:title" content="t">
<meta name="twitter:description" content="d">
<meta name="twitter:image" content="i">
<script type="application/ld+json">{"@type":"WebPage"}</script>
</head>
<body>
<h2>Section</h2>
<img src="a.png">
</body>
</html>`

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newInput(t *testing.T, markup string, extras rules.Extras) *Input {
	t.Helper()
	doc, err := document.ParseString(markup)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return &Input{URL: "https://example.com/", Document: doc, Extras: extras}
}

func TestEvaluateScoresFindings(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithClock(func() time.Time { return fixedTime }))
	in := newInput(t, nearlyCompletePage, rules.Extras{SitemapXML: "<urlset/>"})

	result, err := e.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 errors (description, h1, img alt) and 1 warning (robots).
	if result.Score != 65 {
		t.Errorf("expected score 65, got %d (findings %+v)", result.Score, result.Findings)
	}
	c := result.Counts()
	if c.Errors != 3 || c.Warnings != 1 || c.Info != 0 {
		t.Errorf("unexpected counts %+v", c)
	}
	if !result.Timestamp.Equal(fixedTime) {
		t.Errorf("expected timestamp %v, got %v", fixedTime, result.Timestamp)
	}
	if result.Perf != nil {
		t.Error("expected no perf data without a sampler")
	}
}

func TestEvaluateWithSampler(t *testing.T) {
	t.Parallel()

	sampler := perf.SamplerFunc(func(_ context.Context, _ string) (*perf.Sample, error) {
		return &perf.Sample{LCP: 4500, CLS: 0.05, FCP: 1000, TTFB: 200, LoadTime: 2000, DOMContentLoaded: 1000}, nil
	})
	e := NewEngine(WithSampler(sampler))
	if !e.SamplingEnabled() {
		t.Fatal("expected sampling to be enabled")
	}

	in := newInput(t, nearlyCompletePage, rules.Extras{SitemapXML: "<urlset/>"})
	result, err := e.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Perf == nil {
		t.Fatal("expected perf data")
	}

	last := result.Findings[len(result.Findings)-1]
	if last.Rule != "perf" || last.Severity != model.SeverityError {
		t.Errorf("expected trailing perf error, got %+v", last)
	}
	// 65 from the rules minus 10 for the poor LCP.
	if result.Score != 55 {
		t.Errorf("expected score 55, got %d", result.Score)
	}
}

func TestPerfOnlyLowersScore(t *testing.T) {
	t.Parallel()

	in := newInput(t, nearlyCompletePage, rules.Extras{})
	without, err := NewEngine().EvaluateWithSample(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	with, err := NewEngine().EvaluateWithSample(context.Background(), in, &perf.Sample{LCP: 3000, CLS: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if with.Score > without.Score {
		t.Errorf("expected perf to never raise the score: %d > %d", with.Score, without.Score)
	}
}

func TestEvaluateSamplerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no browser")
	e := NewEngine(WithSampler(perf.SamplerFunc(func(context.Context, string) (*perf.Sample, error) {
		return nil, boom
	})))

	_, err := e.Evaluate(context.Background(), newInput(t, "", rules.Extras{}))
	if !errors.Is(err, boom) {
		t.Errorf("expected sampler error to be wrapped, got %v", err)
	}
}

func TestEvaluateWithCustomRuleSet(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithRuleSet(rules.NewRuleSet(rules.WithDisabled(rules.BuiltinNames()...))))
	result, err := e.Evaluate(context.Background(), newInput(t, "", rules.Extras{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 100 || len(result.Findings) != 0 {
		t.Errorf("expected a perfect score with all rules disabled, got %d with %d findings", result.Score, len(result.Findings))
	}
}
