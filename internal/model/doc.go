// Package model defines the core data structures used throughout seoscan.
//
// This package contains the following main types:
//   - Finding: A single rule outcome with severity, message, and remediation
//   - Metric / MetricSet: Rated browser performance measurements
//   - EvaluationResult: The audit result for one page
//   - ComparisonResult: A head-to-head pairing of two evaluation results
//
// Models live in their own package so that rules, perf, compare, report,
// database, and server can share them without import cycles. Every type is
// created fresh per audit and treated as read-only afterwards.
package model
