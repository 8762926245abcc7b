package verdict

import "time"

// Config holds configuration for the Verdict engine.
type Config struct {
	// CacheTTL is the time-to-live for cached check results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// EnableRoleRules enables the built-in role capability matrix.
	// Defaults to true.
	EnableRoleRules *bool `json:"enable_role_rules,omitempty"`

	// EnablePolicyRules enables statement/condition policy evaluation.
	// Defaults to true.
	EnablePolicyRules *bool `json:"enable_policy_rules,omitempty"`

	// LogDecisions persists an audit entry for every check.
	LogDecisions bool `json:"log_decisions,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		EnableRoleRules:   &t,
		EnablePolicyRules: &t,
	}
}

func (c Config) roleRulesEnabled() bool   { return c.EnableRoleRules == nil || *c.EnableRoleRules }
func (c Config) policyRulesEnabled() bool { return c.EnablePolicyRules == nil || *c.EnablePolicyRules }
