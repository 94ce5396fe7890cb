package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/model"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) listSites(c *gin.Context) {
	sites, err := s.db.ListSites(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

type createSiteRequest struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	IsCompetitor bool   `json:"is_competitor"`
}

func (s *Server) createSite(c *gin.Context) {
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	u, err := config.NormalizeURL(req.URL)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	site, err := s.db.CreateSite(c.Request.Context(), u, req.Name, req.IsCompetitor)
	if err != nil {
		if errors.Is(err, database.ErrSiteExists) {
			errorJSON(c, http.StatusConflict, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (s *Server) deleteSite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.db.DeleteSite(c.Request.Context(), id); err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) listScans(c *gin.Context) {
	raw := c.Query("site_id")
	if raw == "" {
		errorJSON(c, http.StatusBadRequest, errors.New("site_id is required"))
		return
	}
	siteID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid site_id: %s", raw))
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", l))
			return
		}
	}

	scans, err := s.db.ListScans(c.Request.Context(), siteID, limit)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, scans)
}

func (s *Server) latestScans(c *gin.Context) {
	scans, err := s.db.LatestScans(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, scans)
}

func (s *Server) getScan(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	scan, err := s.db.GetScan(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

type createScanRequest struct {
	SiteID int64 `json:"site_id"`
	Perf   bool  `json:"perf"`
}

func (s *Server) createScan(c *gin.Context) {
	var req createScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	auditor, err := s.auditorFor(req.Perf)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	site, err := s.db.GetSite(ctx, req.SiteID)
	if err != nil {
		s.dbError(c, err)
		return
	}

	rec, err := s.scanSite(ctx, auditor, site)
	if err != nil {
		errorJSON(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type batchScanRequest struct {
	SiteIDs []int64 `json:"site_ids"`
	Perf    bool    `json:"perf"`
}

type batchFailure struct {
	SiteID int64  `json:"site_id"`
	Error  string `json:"error"`
}

type batchScanResponse struct {
	Scans  []*database.ScanRecord `json:"scans"`
	Failed []batchFailure         `json:"failed"`
}

func (s *Server) batchScan(c *gin.Context) {
	var req batchScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if len(req.SiteIDs) == 0 {
		errorJSON(c, http.StatusBadRequest, errors.New("site_ids is required"))
		return
	}
	auditor, err := s.auditorFor(req.Perf)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	sites := make([]*database.Site, 0, len(req.SiteIDs))
	for _, id := range req.SiteIDs {
		site, err := s.db.GetSite(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
		sites = append(sites, site)
	}

	// Slots keep the response in request order.
	recs := make([]*database.ScanRecord, len(sites))
	errs := make([]error, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, site := range sites {
		g.Go(func() error {
			recs[i], errs[i] = s.scanSite(gctx, auditor, site)
			return nil
		})
	}
	_ = g.Wait()

	resp := batchScanResponse{
		Scans:  make([]*database.ScanRecord, 0, len(sites)),
		Failed: make([]batchFailure, 0),
	}
	for i, site := range sites {
		if errs[i] != nil {
			resp.Failed = append(resp.Failed, batchFailure{SiteID: site.ID, Error: errs[i].Error()})
			continue
		}
		resp.Scans = append(resp.Scans, recs[i])
	}

	c.JSON(http.StatusOK, resp)
}

type compareRequest struct {
	SiteID       int64 `json:"site_id"`
	CompetitorID int64 `json:"competitor_id"`
	Perf         bool  `json:"perf"`
}

func (s *Server) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	auditor, err := s.auditorFor(req.Perf)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	primary, err := s.db.GetSite(ctx, req.SiteID)
	if err != nil {
		s.dbError(c, err)
		return
	}
	competitor, err := s.db.GetSite(ctx, req.CompetitorID)
	if err != nil {
		s.dbError(c, err)
		return
	}

	// Neither scan is stored unless both audits succeed.
	var pResult, cResult *model.EvaluationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pResult, err = s.auditSite(gctx, auditor, primary)
		return err
	})
	g.Go(func() error {
		var err error
		cResult, err = s.auditSite(gctx, auditor, competitor)
		return err
	})
	if err := g.Wait(); err != nil {
		errorJSON(c, http.StatusBadGateway, err)
		return
	}

	pRec, err := s.db.SaveScan(ctx, primary.ID, pResult)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	cRec, err := s.db.SaveScan(ctx, competitor.ID, cResult)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, compare.New(pRec.Result(), cRec.Result()))
}

// scanSite audits site and stores the result.
func (s *Server) scanSite(ctx context.Context, auditor Auditor, site *database.Site) (*database.ScanRecord, error) {
	result, err := s.auditSite(ctx, auditor, site)
	if err != nil {
		return nil, err
	}
	return s.db.SaveScan(ctx, site.ID, result)
}

func (s *Server) auditSite(ctx context.Context, auditor Auditor, site *database.Site) (*model.EvaluationResult, error) {
	result, err := auditor.Audit(ctx, site.URL)
	if err != nil {
		s.logger.Warn("audit failed", "site_id", site.ID, "url", site.URL, "error", err)
		return nil, err
	}
	return result, nil
}

func (s *Server) dbError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	errorJSON(c, http.StatusInternalServerError, err)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid id: %s", c.Param("id")))
		return 0, false
	}
	return id, true
}
