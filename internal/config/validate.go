package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DBPath == "" {
		return errors.New("paths.db_path must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port value: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if s.RateMax <= s.RateMin {
		return errors.New("scoring.rate_max must be greater than scoring.rate_min")
	}
	if s.D2PMax <= s.D2PMin {
		return errors.New("scoring.d2p_max must be greater than scoring.d2p_min")
	}
	if s.RateWeight < 0 || s.D2PWeight < 0 {
		return errors.New("scoring weights must not be negative")
	}
	if s.RateWeight+s.D2PWeight == 0 {
		return errors.New("at least one scoring weight must be positive")
	}
	if s.MissingD2PPenalty < 0 {
		return errors.New("scoring.missing_d2p_penalty must not be negative")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return errors.New("limits.max_limit must be at least limits.default_limit")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
