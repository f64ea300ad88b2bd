package storage

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the object store holding remote rule sets.
type Config struct {
	// Endpoint is host:port of the S3-compatible service; a scheme is tolerated.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the rule sets under the engine's rules prefix.
	Bucket string `mapstructure:"bucket" default:"compliance"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Host returns the endpoint without an http:// or https:// scheme.
func (c Config) Host() string {
	host := strings.TrimPrefix(c.Endpoint, "http://")
	return strings.TrimPrefix(host, "https://")
}

// Timeout returns the connection timeout, defaulting to 30s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports settings the client cannot work without.
func (c Config) Validate() error {
	if c.Host() == "" {
		return errors.New("storage endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	return nil
}
