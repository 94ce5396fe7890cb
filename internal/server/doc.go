// Package server exposes scan history and on-demand audits over a JSON API
// for the dashboard.
//
// Routes live under /api. Every response is JSON; failures carry an
// {"error": "..."} body. Requests pass through panic recovery, slog request
// logging, and a per-client token-bucket limiter.
package server
