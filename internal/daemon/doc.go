// Package daemon runs the long-lived platter process: it owns the catalog
// store, enforces single-instance execution with a file lock, and serves the
// read/admin HTTP API.
//
// Keep orchestration logic here: placement semantics live in the binning and
// binwatch packages while the daemon focuses on startup, shutdown, and
// request routing.
package daemon
