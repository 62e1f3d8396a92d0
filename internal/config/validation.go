package config

import "errors"

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Match.Threshold < 0 || c.Match.Threshold >= 1 {
		return errors.New("match.threshold must be in [0, 1)")
	}
	if c.Match.StaleAfterSeconds < 1 {
		return errors.New("match.staleAfterSeconds must be positive")
	}
	if c.Match.SweepIntervalSeconds < 1 {
		return errors.New("match.sweepIntervalSeconds must be positive")
	}
	if c.Match.WaitPerQueuedSeconds < 0 {
		return errors.New("match.waitPerQueuedSeconds must not be negative")
	}
	if c.Match.EndedTTLSeconds < 1 {
		return errors.New("match.endedTTLSeconds must be positive")
	}
	if c.Redis.Address == "" {
		return errors.New("redis.address must be specified")
	}
	if c.NATS.URL == "" {
		return errors.New("nats.url must be specified")
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return errors.New("metrics.port must be a valid port")
	}
	return nil
}
