// Package config handles configuration management for dotseed.
// It layers embedded defaults, an optional TOML or YAML config file,
// environment variables and command-line flags, and turns the result into
// the explicit options the deployer runs with.
package config
