// Package config holds runtime settings for seoscan: defaults, validation,
// the optional .seoscan YAML file with per-site overrides, and XDG paths.
package config
