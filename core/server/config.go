package server

import "fmt"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"4"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is required")
	}
	return nil
}
