// Package importer ingests the legacy vinyl spreadsheet. Rows are keyed by
// master key so re-importing the same workbook updates rather than
// duplicates, and all writes route through the trigger layer so placement
// stays consistent without the importer touching the engine.
package importer
