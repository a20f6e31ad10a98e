// Package config provides configuration structures and utilities for ndsphere.
// It defines the sweep grid, the random source selection, the output files
// and the run store location, along with the optional .ndsphere YAML file
// that supplies defaults for them.
package config
