// Package api defines transport-friendly DTOs and the services the CLI and
// HTTP daemon share. Mutating operations route through CatalogService and
// BinningService so the snapshot capture and post-commit rebin protocol
// lives in exactly one place; neither front end touches the store directly
// for writes.
package api
