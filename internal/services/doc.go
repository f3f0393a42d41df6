// Package services holds cross-cutting service-layer helpers: error markers
// used to classify failures for CLI and HTTP surfaces, and context annotation
// helpers that flow catalog identifiers into structured logs.
package services
