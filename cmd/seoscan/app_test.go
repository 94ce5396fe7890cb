package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/log"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/report"
)

const (
	goodPage = `<!DOCTYPE html>
<html lang="en"><head>
<title>A perfectly reasonable page title</title>
<meta name="description" content="A meta description long enough to satisfy the length check for search result snippets.">
</head><body><h1>Hello</h1><img src="a.png" alt="a"></body></html>`

	badPage = `<html><head></head><body><img src="a.png"></body></html>`
)

// newTestSite serves path -> body; everything else is 404.
func newTestSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".seoscan")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads scan flags", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "defaults:\n  disabled_rules: [twitter]\n")
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{
			"--json", "--batch", "5", "--no-save", "--perf",
			"--timeout", "5s", "--delay", "100ms", "--browser-tls",
			"--config", path,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.JSONReport || cfg.MarkdownReport {
			t.Error("expected JSON report")
		}
		if cfg.BatchSize != 5 {
			t.Errorf("expected batch 5, got %d", cfg.BatchSize)
		}
		if cfg.SaveToDB {
			t.Error("expected --no-save to disable saving")
		}
		if !cfg.Perf || !cfg.BrowserTLS {
			t.Error("expected perf and browser TLS")
		}
		if cfg.Timeout != 5*time.Second || cfg.RequestDelay != 100*time.Millisecond {
			t.Errorf("unexpected durations %s %s", cfg.Timeout, cfg.RequestDelay)
		}
		if len(cfg.SiteConfigs.Defaults.DisabledRules) != 1 {
			t.Errorf("expected config file to load, got %+v", cfg.SiteConfigs)
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "example.com" {
			t.Errorf("unexpected targets %v", cfg.Targets)
		}
	})

	t.Run("commands without report flags keep defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewMCPCmd()
		if err := cmd.ParseFlags([]string{"--config", writeConfig(t, "")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.SaveToDB || cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected defaults, got save=%v batch=%d", cfg.SaveToDB, cfg.BatchSize)
		}
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := buildConfig(cmd, []string{"example.com"}); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats fail validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown", "--config", writeConfig(t, "")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

func TestReportFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  config.Config
		want report.Format
	}{
		{"default", config.Config{}, report.FormatText},
		{"json", config.Config{JSONReport: true}, report.FormatJSON},
		{"markdown", config.Config{MarkdownReport: true}, report.FormatMarkdown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := reportFormat(&tc.cfg); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "report.txt")
	cfg := &config.Config{ReportFile: path}

	w, closeFn, err := openOutput(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestAuditorsDisabledFor(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SiteConfigs = &config.File{
		Defaults: config.SiteConfig{DisabledRules: []string{"twitter"}},
		Sites: map[string]config.SiteConfig{
			"staging.example.com": {DisabledRules: []string{"sitemap"}},
		},
	}
	a := newAuditors(cfg, log.Discard(), false)

	if got := a.disabledFor("https://staging.example.com/page"); strings.Join(got, ",") != "twitter,sitemap" {
		t.Errorf("expected twitter,sitemap, got %v", got)
	}
	if got := a.disabledFor("https://example.com/"); strings.Join(got, ",") != "twitter" {
		t.Errorf("expected twitter, got %v", got)
	}
}

func TestAuditAll(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t, map[string]string{
		"/good": goodPage,
		"/bad":  badPage,
	})

	cfg := config.NewConfig()
	cfg.SiteConfigs = &config.File{}
	a := newAuditors(cfg, log.Discard(), false)

	targets := []string{srv.URL + "/bad", srv.URL + "/missing", srv.URL + "/good"}
	jobs, err := a.auditAll(context.Background(), targets, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.URL != targets[i] {
			t.Errorf("job %d: expected %s, got %s", i, targets[i], job.URL)
		}
	}
	if jobs[1].Err == nil {
		t.Error("expected 404 page to fail")
	}
	if jobs[0].Result == nil || jobs[2].Result == nil {
		t.Fatal("expected results for reachable pages")
	}
	if jobs[0].Result.Score >= jobs[2].Result.Score {
		t.Errorf("expected bad page to score lower: %d vs %d", jobs[0].Result.Score, jobs[2].Result.Score)
	}
}

func TestSaveResult(t *testing.T) {
	t.Parallel()

	t.Run("nil database is a no-op", func(t *testing.T) {
		t.Parallel()
		if err := saveResult(context.Background(), nil, "https://example.com", &model.EvaluationResult{}, false); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("records site and scan", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })

		ctx := context.Background()
		result := &model.EvaluationResult{URL: "https://rival.test/", Score: 80, Timestamp: time.Now().UTC()}
		for range 2 {
			if err := saveResult(ctx, db, "https://rival.test", result, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		site, err := db.GetSiteByURL(ctx, "https://rival.test")
		if err != nil {
			t.Fatalf("expected site: %v", err)
		}
		if !site.IsCompetitor {
			t.Error("expected competitor flag")
		}
		scans, err := db.ListScans(ctx, site.ID, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(scans) != 2 {
			t.Errorf("expected 2 scans under one site, got %d", len(scans))
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	result := &model.EvaluationResult{URL: "https://example.com", Score: 88, Timestamp: time.Now().UTC()}

	t.Run("file output echoes text to stdout", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{JSONReport: true, ReportFile: filepath.Join(t.TempDir(), "r.json")}
		var file, stdout strings.Builder
		if _, err := newReportWriter(cfg, &file, &stdout).WriteResult(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(file.String(), `"score": 88`) {
			t.Errorf("expected JSON in file, got %q", file.String())
		}
		if !strings.Contains(stdout.String(), "88/100") {
			t.Errorf("expected text summary on stdout, got %q", stdout.String())
		}
	})

	t.Run("stdout only", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{JSONReport: true}
		var out strings.Builder
		if _, err := newReportWriter(cfg, &out, &out).WriteResult(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "SEO Report") {
			t.Error("expected JSON only")
		}
	})
}
