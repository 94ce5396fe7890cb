package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/seoscan/internal/audit"
	"github.com/nao1215/seoscan/internal/fetcher"
)

func TestAuditor(t *testing.T) {
	t.Parallel()

	t.Run("Audit returns a scored result", func(t *testing.T) {
		t.Parallel()

		a := NewAuditor(&fakeFetcher{}, audit.NewEngine())
		result, err := a.Audit(context.Background(), "https://example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("score out of range: %d", result.Score)
		}
		if len(result.Findings) == 0 {
			t.Error("expected findings for a sparse page")
		}
	})

	t.Run("AuditHTML does not fetch", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{}
		a := NewAuditor(f, audit.NewEngine())
		_, err := a.AuditHTML(context.Background(), &fetcher.Page{URL: "https://example.com/", HTML: testPage})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.calls.Load() != 0 {
			t.Errorf("expected no fetch, got %d", f.calls.Load())
		}
	})

	t.Run("Compare computes score delta", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[string]string{
			"https://bare.test/": "<html><body></body></html>",
		}}
		a := NewAuditor(f, audit.NewEngine())
		c, err := a.Compare(context.Background(), "https://example.com/", "https://bare.test/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ScoreDelta != c.Primary.Score-c.Competitor.Score {
			t.Errorf("expected delta %d, got %d", c.Primary.Score-c.Competitor.Score, c.ScoreDelta)
		}
		if c.ScoreDelta <= 0 {
			t.Errorf("expected primary to win, delta %d", c.ScoreDelta)
		}
	})

	t.Run("Compare fails when either side fails", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{fail: map[string]error{"https://down.test/": fetcher.ErrFetchFailed}}
		a := NewAuditor(f, audit.NewEngine())
		_, err := a.Compare(context.Background(), "https://example.com/", "https://down.test/")
		if !errors.Is(err, fetcher.ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
	})

	t.Run("AuditBatch keeps order", func(t *testing.T) {
		t.Parallel()

		a := NewAuditor(&fakeFetcher{}, audit.NewEngine(), WithAuditorConcurrency(1))
		jobs, err := a.AuditBatch(context.Background(), []string{"https://a.test/", "https://b.test/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 2 || jobs[1].URL != "https://b.test/" {
			t.Errorf("unexpected jobs %+v", jobs)
		}
	})
}
