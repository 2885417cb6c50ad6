package config

import (
	"fmt"
	"net"
	"time"
)

// Validate checks the configuration for common mistakes
func (c *Config) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", c.Assist.Server.Addr); err != nil {
		return fmt.Errorf("invalid server addr %q: %w", c.Assist.Server.Addr, err)
	}

	if c.Assist.Server.Timeout != "" {
		if _, err := time.ParseDuration(c.Assist.Server.Timeout); err != nil {
			return fmt.Errorf("invalid server timeout %q: %w", c.Assist.Server.Timeout, err)
		}
	}

	if c.Assist.Auth.Token == "" {
		return fmt.Errorf("auth token must not be empty")
	}

	if c.Assist.Matcher.TopK <= 0 {
		return fmt.Errorf("matcher top_k must be positive, got %d", c.Assist.Matcher.TopK)
	}
	if c.Assist.Matcher.MinScore <= 0 {
		return fmt.Errorf("matcher min_score must be positive, got %d", c.Assist.Matcher.MinScore)
	}

	if c.Assist.Audit.Enabled && c.Assist.Audit.DBPath == "" {
		return fmt.Errorf("audit db_path must be set when audit is enabled")
	}

	return nil
}
