package compliance

import "time"

// Config holds configuration for the compliance engine.
type Config struct {
	// Workers bounds how many (rule, object) pairs a job reconciles at once.
	Workers int `mapstructure:"workers" default:"8"`
	// AuditTimeoutSeconds is the per-audit deadline. Zero disables it.
	AuditTimeoutSeconds int `mapstructure:"audit_timeout_seconds" default:"30"`
	// RulesPrefix is the storage prefix holding remote rule sets.
	RulesPrefix string `mapstructure:"rules_prefix" default:"compliance_rules"`
	// DynamicRules enables loading rule sets from storage.
	DynamicRules bool `mapstructure:"dynamic_rules" default:"true"`
}

// AuditTimeout returns the per-audit deadline as a duration.
func (c Config) AuditTimeout() time.Duration {
	if c.AuditTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AuditTimeoutSeconds) * time.Second
}
