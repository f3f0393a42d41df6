// Package seed populates reference data: storage zones, sort buckets, media
// types, and the bin grid for a zone. Every operation is idempotent so
// re-running against an existing catalog normalizes rather than duplicates.
package seed
