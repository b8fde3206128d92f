package pkgconfig

import "time"

// Config reads typed values from the loaded configuration. Keys are
// dot-separated paths, for example "sales.store.redis.address".
//
// Wiring code depends on this interface instead of a concrete loader so
// modules can be constructed in tests without a config file on disk.
type Config interface {
	// GetString returns the value for key as a string.
	GetString(key string) string
	// GetInt returns the value for key as an int64.
	GetInt(key string) int64
	// GetBool returns the value for key as a bool.
	GetBool(key string) bool
	// GetFloat returns the value for key as a float64.
	GetFloat(key string) float64
	// GetDuration parses the value for key with time.ParseDuration ("1s", "24h").
	GetDuration(key string) time.Duration
	// GetArray returns the comma-separated value for key as a slice.
	GetArray(key string) []string
	// Close releases whatever the configuration source holds open.
	Close() error
}
