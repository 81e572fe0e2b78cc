// Package config loads and merges application configuration from
// environment variables, command-line flags, and an optional JSON file.
//
// Sources are merged with mergo in priority order (environment first, then
// flags, then the JSON file) so that a later source only fills fields the
// earlier sources left empty. Defaults for unset options are applied during
// validation.
package config
