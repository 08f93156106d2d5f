// Package config loads, normalizes, and validates the loadfinder TOML
// configuration. Defaults live in defaults.go; Load overlays an optional
// config file on top of them and expands every path field.
package config
