// Package catalog provides the durable entity store for the collection:
// storage zones, media types, sort buckets, logical and physical bins, bin
// mappings, artists, media items, and the rebin audit trail. Persistence is
// SQLite with embedded migrations; every write used by the placement engine
// goes through explicit batch statements so reassignment never re-enters the
// change-trigger layer.
package catalog
