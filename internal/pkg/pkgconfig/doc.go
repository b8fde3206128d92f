// Package pkgconfig abstracts how the service reads configuration.
//
// The Config interface exposes typed getters keyed by dot-separated paths;
// the Viper implementation loads them from a YAML file with environment
// variable overrides. Modules receive a Config and pull only the keys under
// their own prefix, which keeps wiring explicit and tests file-free.
package pkgconfig
