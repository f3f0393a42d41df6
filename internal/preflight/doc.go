// Package preflight verifies the runtime environment before the catalog
// opens: directory existence and permissions for the data, log, and export
// locations. Both the CLI status command and the daemon run these checks.
package preflight
