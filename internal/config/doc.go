// Package config defines application configuration, defaults, and the
// optional .bsmiweb YAML configuration file.
package config
