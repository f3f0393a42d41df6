// Package config loads, normalizes, and validates Platter configuration.
//
// Configuration comes from a TOML file resolved from an explicit path,
// ~/.config/platter/config.toml, or ./platter.toml, in that order. Defaults
// live in defaults.go; Load always returns a fully normalized config with
// expanded absolute paths so downstream code never re-checks them.
package config
