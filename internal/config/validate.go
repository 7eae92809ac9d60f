// internal/config/validate.go
package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Fetch.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("fetch.concurrency: must be at least 1, got %d", c.Fetch.Concurrency))
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Sprintf("fetch.requests_per_second: must be positive, got %v", c.Fetch.RequestsPerSecond))
	}
	if c.Fetch.Burst < 1 {
		errs = append(errs, fmt.Sprintf("fetch.burst: must be at least 1, got %d", c.Fetch.Burst))
	}
	if c.Fetch.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("fetch.timeout: must be positive, got %s", c.Fetch.Timeout))
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, "cache.path: required when cache is enabled")
	}

	return errs
}
