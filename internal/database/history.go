package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/seoscan/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "seoscan.db"

// DefaultListLimit is used by ListScans when no positive limit is given.
const DefaultListLimit = 50

var (
	// ErrSiteExists is returned when a site URL is already tracked.
	ErrSiteExists = errors.New("site already exists")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// HistoryDB is the SQLite-backed history store.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database inside dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	// The pragma is applied to every new connection, unlike a one-off PRAGMA.
	dsn := "file:" + dbPath + "?mode=" + mode + "&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sites (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		url           TEXT NOT NULL UNIQUE,
		name          TEXT,
		is_competitor BOOLEAN DEFAULT 0,
		created_at    TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS scans (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id       INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		url           TEXT NOT NULL,
		score         INTEGER NOT NULL,
		perf_score    INTEGER,
		findings_json TEXT NOT NULL,
		perf_json     TEXT,
		timestamp     TEXT NOT NULL,
		created_at    TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_scans_site_timestamp ON scans(site_id, timestamp DESC);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Site is a tracked URL.
type Site struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Name         string    `json:"name,omitempty"`
	IsCompetitor bool      `json:"is_competitor"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScanRecord is one stored evaluation.
type ScanRecord struct {
	ID        int64            `json:"id"`
	SiteID    int64            `json:"site_id"`
	URL       string           `json:"url"`
	Score     int              `json:"score"`
	PerfScore *int             `json:"perf_score,omitempty"`
	Findings  []model.Finding  `json:"findings"`
	Perf      *model.MetricSet `json:"perf,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	CreatedAt time.Time        `json:"created_at"`
}

// Result converts the record back into an evaluation result.
func (r *ScanRecord) Result() *model.EvaluationResult {
	return &model.EvaluationResult{
		URL:       r.URL,
		Score:     r.Score,
		Findings:  r.Findings,
		Timestamp: r.Timestamp,
		Perf:      r.Perf,
	}
}

// CreateSite adds a tracked site. It returns ErrSiteExists when the URL is
// already tracked.
func (h *HistoryDB) CreateSite(ctx context.Context, url, name string, isCompetitor bool) (*Site, error) {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO sites (url, name, is_competitor) VALUES (?, ?, ?)`,
		url, nullString(name), isCompetitor,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", url, ErrSiteExists)
		}
		return nil, fmt.Errorf("failed to insert site: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get site id: %w", err)
	}
	return h.GetSite(ctx, id)
}

// EnsureSite returns the site tracking url, creating it when missing.
func (h *HistoryDB) EnsureSite(ctx context.Context, url string, isCompetitor bool) (*Site, error) {
	site, err := h.GetSiteByURL(ctx, url)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	site, err = h.CreateSite(ctx, url, "", isCompetitor)
	if errors.Is(err, ErrSiteExists) {
		// Lost a race with another writer.
		return h.GetSiteByURL(ctx, url)
	}
	return site, err
}

const siteColumns = `id, url, name, is_competitor, created_at`

// ListSites returns all sites, newest first.
func (h *HistoryDB) ListSites(ctx context.Context) ([]*Site, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	sites := make([]*Site, 0)
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetSite returns the site with the given id.
func (h *HistoryDB) GetSite(ctx context.Context, id int64) (*Site, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = ?`, id)
	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %d: %w", id, ErrNotFound)
	}
	return site, err
}

// GetSiteByURL returns the site tracking url.
func (h *HistoryDB) GetSiteByURL(ctx context.Context, url string) (*Site, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE url = ?`, url)
	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", url, ErrNotFound)
	}
	return site, err
}

// DeleteSite removes a site and its scans. Deleting a missing site is not
// an error.
func (h *HistoryDB) DeleteSite(ctx context.Context, id int64) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}

// SaveScan stores an evaluation result for a site.
func (h *HistoryDB) SaveScan(ctx context.Context, siteID int64, result *model.EvaluationResult) (*ScanRecord, error) {
	findings := result.Findings
	if findings == nil {
		findings = []model.Finding{}
	}
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize findings: %w", err)
	}

	var perfJSON, perfScore any
	if result.Perf != nil {
		b, err := json.Marshal(result.Perf)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize metrics: %w", err)
		}
		perfJSON = string(b)
		perfScore = result.Perf.PerfScore
	}

	res, err := h.db.ExecContext(ctx, `
	INSERT INTO scans (site_id, url, score, perf_score, findings_json, perf_json, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		siteID,
		result.URL,
		result.Score,
		perfScore,
		string(findingsJSON),
		perfJSON,
		result.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get scan id: %w", err)
	}
	return h.GetScan(ctx, id)
}

const scanColumns = `id, site_id, url, score, perf_score, findings_json, perf_json, timestamp, created_at`

// GetScan returns the scan with the given id.
func (h *HistoryDB) GetScan(ctx context.Context, id int64) (*ScanRecord, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %d: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListScans returns a site's scans, newest first. A non-positive limit
// uses DefaultListLimit.
func (h *HistoryDB) ListScans(ctx context.Context, siteID int64, limit int) ([]*ScanRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return h.queryScans(ctx, `
	SELECT `+scanColumns+` FROM scans
	WHERE site_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, siteID, limit)
}

// LatestScans returns the most recent scan of every site that has one.
func (h *HistoryDB) LatestScans(ctx context.Context) ([]*ScanRecord, error) {
	return h.queryScans(ctx, `
	SELECT `+scanColumns+` FROM scans s
	WHERE s.id = (
		SELECT id FROM scans
		WHERE site_id = s.site_id
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	)
	ORDER BY s.timestamp DESC
	`)
}

// PreviousScan returns the scan recorded before the latest one for a site.
func (h *HistoryDB) PreviousScan(ctx context.Context, siteID int64) (*ScanRecord, error) {
	recs, err := h.queryScans(ctx, `
	SELECT `+scanColumns+` FROM scans
	WHERE site_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1 OFFSET 1
	`, siteID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("previous scan of site %d: %w", siteID, ErrNotFound)
	}
	return recs[0], nil
}

func (h *HistoryDB) queryScans(ctx context.Context, query string, args ...any) ([]*ScanRecord, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	recs := make([]*ScanRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*Site, error) {
	var (
		site      Site
		name      sql.NullString
		createdAt sql.NullString
	)
	if err := row.Scan(&site.ID, &site.URL, &name, &site.IsCompetitor, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read site: %w", err)
	}
	site.Name = name.String
	site.CreatedAt = parseTimestamp(createdAt.String)
	return &site, nil
}

func scanRecord(row rowScanner) (*ScanRecord, error) {
	var (
		rec          ScanRecord
		perfScore    sql.NullInt64
		findingsJSON string
		perfJSON     sql.NullString
		timestamp    string
		createdAt    sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.SiteID,
		&rec.URL,
		&rec.Score,
		&perfScore,
		&findingsJSON,
		&perfJSON,
		&timestamp,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read scan: %w", err)
	}

	if perfScore.Valid {
		v := int(perfScore.Int64)
		rec.PerfScore = &v
	}
	if err := json.Unmarshal([]byte(findingsJSON), &rec.Findings); err != nil {
		return nil, fmt.Errorf("failed to parse findings of scan %d: %w", rec.ID, err)
	}
	if perfJSON.Valid && perfJSON.String != "" {
		var ms model.MetricSet
		if err := json.Unmarshal([]byte(perfJSON.String), &ms); err != nil {
			return nil, fmt.Errorf("failed to parse metrics of scan %d: %w", rec.ID, err)
		}
		rec.Perf = &ms
	}
	rec.Timestamp = parseTimestamp(timestamp)
	rec.CreatedAt = parseTimestamp(createdAt.String)
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// Without extended result codes only the primary code is set.
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timestampFormats lists the layouts SQLite and SaveScan produce.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
