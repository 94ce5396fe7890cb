// Package database stores scan history in SQLite.
//
// HistoryDB keeps two tables: tracked sites and the scans recorded for
// them. Findings and performance metrics are stored as JSON columns so
// that a scan can be read back exactly as it was produced.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database is a
// single file opened in WAL mode with foreign keys enforced, so deleting a
// site removes its scans.
package database
