// Package config provides configuration structures and utilities for csmareport.
// It defines the input and output paths, the delay lookup settings, report
// formats, and the optional YAML file with per-chart overrides.
package config
