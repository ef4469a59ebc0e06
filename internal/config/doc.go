// Package config loads, normalizes, and validates newshub configuration.
//
// Settings come from TOML (defaults to ~/.config/newshub/config.toml) with
// environment fallbacks for credentials. The list of sources the pipeline reads
// lives in a separate YAML file referenced by paths.sources_file. Helpers here
// also expand user paths and create the output directories a run needs.
package config
