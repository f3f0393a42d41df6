// Package binning implements the deterministic placement engine: scope
// resolution, canonical ranking, bin universe resolution, the capacity-aware
// bin choice, single-item assignment, and the scope/zone rebin operations
// that detect changes and record move history.
package binning
