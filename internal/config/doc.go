// Package config loads, normalizes, and validates scribe configuration.
//
// Configuration lives in a TOML file (~/.config/scribe/config.toml or a
// project-local scribe.toml). Every value has a default, so the tool runs
// without any file present; command-line flags override file values per
// invocation.
package config
