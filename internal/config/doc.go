// Package config loads, normalizes, and validates the TOML configuration
// shared by the reelforge daemon and CLI.
package config
