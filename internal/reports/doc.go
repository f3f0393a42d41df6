// Package reports builds the operator-facing views of the catalog: capacity
// early warnings, first/last shelf indexes, the printable catalog book, rebin
// task lists, and physical bin label sheets.
package reports
