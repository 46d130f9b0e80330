package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies, which bounds the size of one sync batch.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"8"`
	// ViewCacheSeconds is how long GET /inventory responses are cached. Zero disables caching.
	ViewCacheSeconds int `mapstructure:"view_cache_seconds" default:"30"`
	// ShutdownSeconds bounds graceful shutdown.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// ViewCacheTTL returns the view cache lifetime.
func (c Config) ViewCacheTTL() time.Duration {
	if c.ViewCacheSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ViewCacheSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
