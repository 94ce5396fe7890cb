package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/model"
)

// batchConcurrency caps concurrent audits in POST /api/scans/batch.
const batchConcurrency = 3

// Auditor runs one audit.
type Auditor interface {
	Audit(ctx context.Context, url string) (*model.EvaluationResult, error)
}

// Options configures a Server.
type Options struct {
	// Auditor runs audits without performance sampling.
	Auditor Auditor

	// PerfAuditor runs audits with sampling. Requests asking for perf are
	// rejected when it is nil.
	PerfAuditor Auditor

	Logger *slog.Logger

	// RateLimit is requests per second per client; RateBurst the bucket
	// size. A non-positive RateLimit disables limiting.
	RateLimit float64
	RateBurst int
}

// Server serves the dashboard API.
type Server struct {
	db        *database.HistoryDB
	auditor   Auditor
	perf      Auditor
	logger    *slog.Logger
	rateLimit float64
	rateBurst int
	started   time.Time
}

// New creates a Server backed by db.
func New(db *database.HistoryDB, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		db:        db,
		auditor:   opts.Auditor,
		perf:      opts.PerfAuditor,
		logger:    logger,
		rateLimit: opts.RateLimit,
		rateBurst: opts.RateBurst,
		started:   time.Now(),
	}
}

// Handler builds the gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global: Recovery → RequestLogger
//	API:    RateLimit
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.logger))

	api := r.Group("/api")
	api.GET("/health", s.health)

	limited := api.Group("")
	if s.rateLimit > 0 {
		limited.Use(RateLimit(s.rateLimit, s.rateBurst))
	}

	limited.GET("/sites", s.listSites)
	limited.POST("/sites", s.createSite)
	limited.DELETE("/sites/:id", s.deleteSite)

	limited.GET("/scans", s.listScans)
	limited.GET("/scans/latest", s.latestScans)
	limited.GET("/scans/:id", s.getScan)
	limited.POST("/scans", s.createScan)
	limited.POST("/scans/batch", s.batchScan)

	limited.POST("/compare", s.compare)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) auditorFor(perf bool) (Auditor, error) {
	if !perf {
		return s.auditor, nil
	}
	if s.perf == nil {
		return nil, errPerfUnavailable
	}
	return s.perf, nil
}

var errPerfUnavailable = errors.New("performance sampling is not enabled on this server")

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
